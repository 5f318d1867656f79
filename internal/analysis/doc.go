// Package analysis holds the fixed catalog of dashboard analyses and the
// pipeline that runs a selection of them against a dataset snapshot.
//
// Every analysis is a pure function of the snapshot. It checks the columns
// it needs before computing and fails with a *ComputationError naming the
// table and column when one is absent; a failure stays local to its
// section.
//
//	sel, err := analysis.ParseSelection(r.URL.Query()["section"])
//	if err != nil {
//	    return err // unknown analysis name
//	}
//	for _, section := range pipeline.Run(ctx, snap, sel) {
//	    if section.Failed() {
//	        // render section.Error inline
//	    }
//	}
package analysis
