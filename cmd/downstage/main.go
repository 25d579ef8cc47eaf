// Command downstage is a CLI for Azure Data Lake Storage Gen2, exposing a
// filesystem-style interface (ls, mkdir, touch, write, cat, rm, rmdir) on
// top of the downstage client library.
package main

func main() {
	if err := newRootCmd().Execute(); err != nil {
		exitOnError(err)
	}
}
