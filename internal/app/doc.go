// Package app wires the dashboard service together and manages its
// lifecycle.
//
// # Initialization Flow
//
//  1. Load configuration from defaults, config.yaml and ECOM_* variables
//  2. Initialize logging and OpenTelemetry
//  3. Create the dataset loader, analysis pipeline and services
//  4. Set up handlers and middleware on a chi router
//  5. Load the datasets (fatal on failure) and start the HTTP server
//  6. Shut down gracefully on SIGINT/SIGTERM
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
package app
