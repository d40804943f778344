package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
)

// localFilePerms is the mode for files written by get.
const localFilePerms = 0o644

func newLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls [path]",
		Short: "List files and folders",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLs,
	}
}

func newSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search the whole drive by name and content",
		Args:  cobra.ExactArgs(1),
		RunE:  runSearch,
	}
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <item-id>",
		Short: "Display file or folder metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  runInfo,
	}
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <item-id> [local-path]",
		Short: "Download a file (to stdout when no local path is given)",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runGet,
	}
}

func newPutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "put <local-path> [remote-path]",
		Short: "Upload a file, replacing any file at the remote path",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runPut,
	}
}

func newMkdirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir <name> [parent-path]",
		Short: "Create a folder (renamed by the server if the name is taken)",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runMkdir,
	}
}

func newRmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <item-id>",
		Short: "Delete a file or folder (moves to OneDrive recycle bin)",
		Args:  cobra.ExactArgs(1),
		RunE:  runRm,
	}
}

func runLs(cmd *cobra.Command, args []string) error {
	folderPath := ""
	if len(args) > 0 {
		folderPath = args[0]
	}

	s, logger, err := openSkill(cmd)
	if err != nil {
		return err
	}

	logger.Debug("ls", "path", folderPath)

	out, err := s.ListFiles(cmd.Context(), folderPath)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), out)

	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	s, logger, err := openSkill(cmd)
	if err != nil {
		return err
	}

	logger.Debug("search", "query", args[0])

	out, err := s.Search(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), out)

	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	s, _, err := openSkill(cmd)
	if err != nil {
		return err
	}

	item, err := s.ItemInfo(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(cmd.OutOrStdout(), item)
	}

	rows := [][]string{
		{"Name:", item.Name},
		{"ID:", item.ID},
		{"Type:", item.Kind()},
		{"Size:", fmt.Sprintf("%s (%d bytes)", formatSize(item.Size), item.Size)},
	}

	if item.MimeType != "" {
		rows = append(rows, []string{"MIME:", item.MimeType})
	}

	if item.ChildCount >= 0 {
		rows = append(rows, []string{"Children:", strconv.Itoa(item.ChildCount)})
	}

	if !item.CreatedAt.IsZero() {
		rows = append(rows, []string{"Created:", formatTime(item.CreatedAt)})
	}

	if !item.ModifiedAt.IsZero() {
		rows = append(rows, []string{"Modified:", formatTime(item.ModifiedAt)})
	}

	if item.WebURL != "" {
		rows = append(rows, []string{"URL:", item.WebURL})
	}

	printRows(cmd.OutOrStdout(), rows)

	return nil
}

func runGet(cmd *cobra.Command, args []string) error {
	itemID := args[0]

	s, logger, err := openSkill(cmd)
	if err != nil {
		return err
	}

	data, err := s.GetFileContent(cmd.Context(), itemID)
	if err != nil {
		return err
	}

	if len(args) < 2 {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	localPath := args[1]
	if err := os.WriteFile(localPath, data, localFilePerms); err != nil {
		return fmt.Errorf("writing %q: %w", localPath, err)
	}

	logger.Debug("download complete", "local_path", localPath, "bytes", len(data))
	statusf(cmd, "Downloaded %s (%s)\n", localPath, formatSize(int64(len(data))))

	return nil
}

func runPut(cmd *cobra.Command, args []string) error {
	localPath := args[0]

	fi, err := os.Stat(localPath)
	if err != nil {
		return fmt.Errorf("stating local file: %w", err)
	}

	if fi.IsDir() {
		return fmt.Errorf("%q is a directory, not a file", localPath)
	}

	// Default remote path is root + local filename.
	remotePath := filepath.Base(localPath)
	if len(args) > 1 {
		remotePath = args[1]
	}

	s, logger, err := openSkill(cmd)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("reading local file: %w", err)
	}

	logger.Debug("put", "local_path", localPath, "remote_path", remotePath, "size", len(data))

	out, err := s.UploadContent(cmd.Context(), remotePath, data)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), out)

	return nil
}

func runMkdir(cmd *cobra.Command, args []string) error {
	parentPath := ""
	if len(args) > 1 {
		parentPath = args[1]
	}

	s, _, err := openSkill(cmd)
	if err != nil {
		return err
	}

	out, err := s.CreateFolder(cmd.Context(), args[0], parentPath)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), out)

	return nil
}

func runRm(cmd *cobra.Command, args []string) error {
	itemID := args[0]

	s, _, err := openSkill(cmd)
	if err != nil {
		return err
	}

	// Look the item up first so the prompt and result show its name.
	item, err := s.ItemInfo(cmd.Context(), itemID)
	if err != nil {
		return err
	}

	out, err := s.DeleteItem(cmd.Context(), itemID, item.Name)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), out)

	return nil
}
