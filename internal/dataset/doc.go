// Package dataset loads the seven e-commerce tables the dashboard works on
// and hands them out as an immutable Snapshot.
//
// # Tables
//
// Every table is a Table wrapping a gota DataFrame. Column types are detected
// from the data, except for identifier and label columns which are always
// kept as strings so that keys such as "1" and "01" never collapse. Empty
// cells, "NA" and "NaN" are treated as missing.
//
// # Loading
//
// A Loader fetches all seven sources concurrently. A source is an http(s)
// URL, a file:// URL or a plain path; a location ending in .xlsx is read as
// a workbook (first sheet) instead of CSV. Any fetch, parse or schema
// failure aborts the whole load with a *RetrievalError; there is no partial
// snapshot.
//
// The first successful Load is cached for the lifetime of the Loader.
// Concurrent first calls share a single fetch:
//
//	loader, err := dataset.NewLoaderFromConfig(cfg.Datasets, dataset.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	snap, err := loader.Load(ctx)
//	if err != nil {
//	    return err // *dataset.RetrievalError
//	}
//	items, _ := snap.Table(dataset.Items)
//	prices, _ := items.Floats("price")
package dataset
