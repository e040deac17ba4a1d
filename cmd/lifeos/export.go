package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	journalrepo "github.com/kailas-cloud/lifeos/internal/repository/journal"
	userrepo "github.com/kailas-cloud/lifeos/internal/repository/user"
	exportuc "github.com/kailas-cloud/lifeos/internal/usecase/export"
)

var (
	exportUser string
	exportAll  bool
	exportOut  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write user data as JSON",
	Long: "Export every entry, habit, reminder and task of a user. Writes to stdout unless --out is set.\n" +
		"With --all, every user is written to <out>/<user id>.json.",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportUser, "user", "", "user ID to export")
	exportCmd.Flags().BoolVar(&exportAll, "all", false, "export every user into the --out directory")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file, or directory with --all (default stdout)")
	exportCmd.MarkFlagsOneRequired("user", "all")
	exportCmd.MarkFlagsMutuallyExclusive("user", "all")
}

func runExport(cmd *cobra.Command, _ []string) (err error) {
	ctx := cmd.Context()

	store, err := openStore(ctx, &cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	svc := exportuc.New(userrepo.New(store), journalrepo.New(store))
	if exportAll {
		return exportAllUsers(cmd, svc, exportOut)
	}

	var w io.Writer = cmd.OutOrStdout()
	if exportOut != "" {
		f, err := os.Create(filepath.Clean(exportOut))
		if err != nil {
			return fmt.Errorf("create %s: %w", exportOut, err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("close %s: %w", exportOut, cerr)
			}
		}()
		bw := bufio.NewWriter(f)
		defer func() {
			if ferr := bw.Flush(); ferr != nil && err == nil {
				err = fmt.Errorf("write %s: %w", exportOut, ferr)
			}
		}()
		w = bw
	}

	if err := svc.WriteJSON(ctx, exportUser, w); err != nil {
		return fmt.Errorf("export user %s: %w", exportUser, err)
	}
	if exportOut != "" {
		logger.Info("Export written", zap.String("user_id", exportUser), zap.String("path", exportOut))
	}
	return nil
}

func exportAllUsers(cmd *cobra.Command, svc *exportuc.Service, dir string) error {
	if dir == "" {
		return errors.New("--all needs --out to name a directory")
	}
	dir = filepath.Clean(dir)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	written, err := svc.WriteAllJSON(cmd.Context(), func(userID string) (io.WriteCloser, error) {
		return os.Create(filepath.Join(dir, userID+".json"))
	})
	logger.Info("Export written", zap.Int("users", len(written)), zap.String("dir", dir))
	if err != nil {
		return fmt.Errorf("export all users: %w", err)
	}
	return nil
}
