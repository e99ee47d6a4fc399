package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/syssam/oaorm/compiler/build"
)

func (a *app) watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch SPEC",
		Short: "Rebuild a spec whenever it changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := a.v.GetString("out")
			rebuild := func() error {
				results, err := build.Execute(cmd.Context(), args, out, a.buildOptions()...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "built %s version %s\n", results[0].Name, results[0].Version)
				return nil
			}
			if err := rebuild(); err != nil {
				zap.S().Errorw("build failed", "path", args[0], "error", err)
			}
			return watch(cmd.Context(), args[0], rebuild)
		},
	}
	addBuildFlags(cmd)
	cmd.Flags().String("out", "oaorm", "output directory")
	return cmd
}

// watch calls rebuild every time the file at path is written or replaced,
// until ctx is done. Build failures are logged and watching goes on.
func watch(ctx context.Context, path string, rebuild func() error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	// Editors often replace the file, so the directory is watched.
	if err := w.Add(filepath.Dir(path)); err != nil {
		return err
	}
	target := filepath.Clean(path)
	log := zap.S()
	log.Infow("watching", "path", path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			log.Debugw("spec changed", "path", ev.Name, "op", ev.Op.String())
			if err := rebuild(); err != nil {
				log.Errorw("build failed", "path", path, "error", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warnw("watch error", "error", err)
		}
	}
}
