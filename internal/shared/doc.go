// Package shared holds helpers used by more than one package.
//
// The testutil subpackage provides a capturing slog handler for tests that
// assert on log output:
//
//	logger, logs := testutil.NewTestLogger(t)
//	svc := services.NewDashboardService(loader, pipeline, logger)
//	...
//	testutil.AssertLogContains(t, logs, slog.LevelWarn, "Analysis failed")
package shared
