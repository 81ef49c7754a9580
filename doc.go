// Package uitest runs a folder of browser UI test scripts concurrently and
// checks their output against golden files.
//
// Each script is executed by an external interpreter against one shared
// browser. Its output is compared with the sibling .output file, or written
// there when blessing. After the scripts, diagnostic suites replay the
// interpreter over filtered folders to check its compact display, failed
// test names and failure backtraces.
//
// End-users interact with the harness through the Service façade:
//
//	srv := uitest.New(uitest.WithFilters(os.Args[1:]...))
//	suite, err := srv.Check(ctx)
//	if err != nil || suite.TotalErrors() > 0 {
//		os.Exit(1)
//	}
//
// The cmd/uitest binary wraps exactly that.
package uitest
