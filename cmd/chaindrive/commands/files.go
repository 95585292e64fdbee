package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"chaindrive/internal/domain"
	"chaindrive/internal/localfs"
	"chaindrive/internal/server"
	filesvc "chaindrive/internal/services/files"
)

func filesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Browse and manage Drive files",
	}
	cmd.AddCommand(filesListCmd(), filesUploadCmd(), filesDownloadCmd(), filesDeleteCmd(), filesMkdirCmd())
	return cmd
}

func filesListCmd() *cobra.Command {
	var q domain.ListQuery
	return withFlags(&cobra.Command{
		Use:   "list",
		Short: "List files",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := wire.Files.List(cmd.Context(), wire.CLISession(cfg), q)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tSIZE\tMODIFIED")
			for _, f := range res.Files {
				size := fmt.Sprint(f.Size)
				if f.IsFolder() {
					size = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.ID, f.Name, size, f.ModifiedTime.Format("2006-01-02 15:04"))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if res.NextPageToken != "" {
				fmt.Printf("\nMore results: --page-token %s\n", res.NextPageToken)
			}
			return nil
		},
	}, func(c *cobra.Command) {
		c.Flags().IntVar(&q.PageSize, "page-size", filesvc.DefaultPageSize, "results per page")
		c.Flags().StringVar(&q.PageToken, "page-token", "", "continue a previous listing")
		c.Flags().StringVarP(&q.Query, "query", "q", "", "Drive search query")
	})
}

func filesUploadCmd() *cobra.Command {
	var folder, name string
	return withFlags(&cobra.Command{
		Use:   "upload <path>",
		Short: "Upload a local file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := localfs.ReadFile(args[0], server.DefaultMaxUpload)
			if err != nil {
				return err
			}
			if name == "" {
				name = filepath.Base(args[0])
			}
			f, err := wire.Files.Upload(cmd.Context(), wire.CLISession(cfg), name, b, folder)
			if err != nil {
				return err
			}
			fmt.Printf("Uploaded %s (%s)\n", f.Name, f.ID)
			return nil
		},
	}, func(c *cobra.Command) {
		c.Flags().StringVar(&folder, "folder", "", "parent folder ID")
		c.Flags().StringVar(&name, "name", "", "remote name (default: local base name)")
	})
}

func filesDownloadCmd() *cobra.Command {
	var dir string
	return withFlags(&cobra.Command{
		Use:   "download <file-id> <name>",
		Short: "Download a file into a local directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := localfs.Target(dir, args[1])
			if err != nil {
				return err
			}
			b, err := wire.Files.Download(cmd.Context(), wire.CLISession(cfg), args[0], args[1])
			if err != nil {
				return err
			}
			if err := localfs.WriteFile(path, b, 0o600); err != nil {
				return err
			}
			fmt.Printf("Saved %s (%d bytes)\n", path, len(b))
			return nil
		},
	}, func(c *cobra.Command) {
		c.Flags().StringVarP(&dir, "dir", "o", ".", "output directory")
	})
}

func filesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <file-id>",
		Short: "Delete a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wire.Files.Delete(cmd.Context(), wire.CLISession(cfg), args[0], ""); err != nil {
				return err
			}
			fmt.Printf("Deleted %s\n", args[0])
			return nil
		},
	}
}

func filesMkdirCmd() *cobra.Command {
	var parent string
	return withFlags(&cobra.Command{
		Use:   "mkdir <name>",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := wire.Files.CreateFolder(cmd.Context(), wire.CLISession(cfg), args[0], parent)
			if err != nil {
				return err
			}
			fmt.Printf("Created folder %s (%s)\n", f.Name, f.ID)
			return nil
		},
	}, func(c *cobra.Command) {
		c.Flags().StringVar(&parent, "parent", "", "parent folder ID")
	})
}
