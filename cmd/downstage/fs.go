package main

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/downstage/downstage-go/dfs"
)

func newLsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls [path]",
		Short: "List files and directories",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLs,
	}

	cmd.Flags().BoolP("recursive", "r", false, "list all paths beneath the directory")

	return cmd
}

func newMkdirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir <path>",
		Short: "Create a directory",
		Args:  cobra.ExactArgs(1),
		RunE:  runMkdir,
	}
}

func newTouchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "touch <path>",
		Short: "Create an empty file",
		Args:  cobra.ExactArgs(1),
		RunE:  runTouch,
	}
}

func newWriteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "write <path> [local-file]",
		Short: "Write a local file (or stdin) to a remote file",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runWrite,
	}

	cmd.Flags().String("content-type", "", "content type to set on the file")

	return cmd
}

func newCatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cat <path>",
		Short: "Print a file's contents",
		Args:  cobra.ExactArgs(1),
		RunE:  runCat,
	}
}

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <path>",
		Short: "Delete a file",
		Args:  cobra.ExactArgs(1),
		RunE:  runRm,
	}
}

func newRmdirCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rmdir <path>",
		Short: "Delete a directory",
		Args:  cobra.ExactArgs(1),
		RunE:  runRmdir,
	}

	cmd.Flags().BoolP("recursive", "r", false, "delete all paths beneath the directory")

	return cmd
}

func newStatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stat <path>",
		Short: "Show a path's properties",
		Args:  cobra.ExactArgs(1),
		RunE:  runStat,
	}
}

// commandError turns a Command into a user-facing error, translating the
// well-known status codes. Returns nil for 2xx.
func commandError(cmd dfs.Command, op, path string) error {
	if cmd.Err != nil {
		return fmt.Errorf("%s %s: %w", op, path, cmd.Err)
	}

	if cmd.OK() {
		return nil
	}

	switch cmd.Response.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%s %s: path does not exist", op, path)
	case http.StatusConflict:
		return fmt.Errorf("%s %s: path already exists or directory is not empty", op, path)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%s %s: access denied (HTTP %d)", op, path, cmd.Response.StatusCode)
	default:
		return fmt.Errorf("%s %s: HTTP %d", op, path, cmd.Response.StatusCode)
	}
}

func runLs(cmd *cobra.Command, args []string) error {
	recursive, _ := cmd.Flags().GetBool("recursive")

	path := ""
	if len(args) == 1 {
		path = args[0]
	}

	fs, err := newFileSystem(cmd.Context())
	if err != nil {
		return err
	}

	result := fs.Ls(cmd.Context(), path, recursive)
	if err := commandError(result, "ls", path); err != nil {
		return err
	}

	entries, err := dfs.ParsePathList(result, buildLogger())
	if err != nil {
		return err
	}

	printListing(os.Stdout, entries)

	return nil
}

func runMkdir(cmd *cobra.Command, args []string) error {
	fs, err := newFileSystem(cmd.Context())
	if err != nil {
		return err
	}

	return commandError(fs.Mkdir(cmd.Context(), args[0]), "mkdir", args[0])
}

func runTouch(cmd *cobra.Command, args []string) error {
	fs, err := newFileSystem(cmd.Context())
	if err != nil {
		return err
	}

	return commandError(fs.Touch(cmd.Context(), args[0]), "touch", args[0])
}

func runWrite(cmd *cobra.Command, args []string) error {
	contentType, _ := cmd.Flags().GetString("content-type")

	var contents []byte

	var err error

	if len(args) == 2 {
		contents, err = os.ReadFile(args[1])
	} else {
		contents, err = io.ReadAll(os.Stdin)
	}

	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fs, err := newFileSystem(cmd.Context())
	if err != nil {
		return err
	}

	if result := fs.Touch(cmd.Context(), args[0]); result.Err != nil {
		return commandError(result, "write", args[0])
	}

	return commandError(fs.Write(cmd.Context(), args[0], contents, contentType, 0), "write", args[0])
}

func runCat(cmd *cobra.Command, args []string) error {
	fs, err := newFileSystem(cmd.Context())
	if err != nil {
		return err
	}

	result := fs.Cat(cmd.Context(), args[0])
	if err := commandError(result, "cat", args[0]); err != nil {
		return err
	}

	_, err = os.Stdout.Write(result.Response.Body)

	return err
}

func runRm(cmd *cobra.Command, args []string) error {
	fs, err := newFileSystem(cmd.Context())
	if err != nil {
		return err
	}

	return commandError(fs.Rm(cmd.Context(), args[0]), "rm", args[0])
}

func runRmdir(cmd *cobra.Command, args []string) error {
	recursive, _ := cmd.Flags().GetBool("recursive")

	fs, err := newFileSystem(cmd.Context())
	if err != nil {
		return err
	}

	return commandError(fs.Rmdir(cmd.Context(), args[0], recursive), "rmdir", args[0])
}

func runStat(cmd *cobra.Command, args []string) error {
	fs, err := newFileSystem(cmd.Context())
	if err != nil {
		return err
	}

	result := fs.Stat(cmd.Context(), args[0])
	if err := commandError(result, "stat", args[0]); err != nil {
		return err
	}

	printHeaders(os.Stdout, result.Response.Headers)

	return nil
}
