package main

import (
	"fmt"
	"io"
	"path"
	"time"

	"github.com/spf13/cobra"
	"github.com/yuanying/opcpkg/opc"
	"github.com/yuanying/opcpkg/parts"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "opcpkg",
		Short: "Inspect and rewrite Office Open XML packages",
		Long: `opcpkg reads .pptx, .docx and .xlsx packages (or their expanded
directories), lists their parts and relationships, and writes them back.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().String("log-level", defaultLogLevel, "Log level: debug, info, warn, error")
	root.PersistentFlags().String("log-format", defaultLogFormat, "Log format: text or json")
	root.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging (overrides --log-level)")

	root.AddCommand(newPartsCmd(), newRelsCmd(), newResaveCmd())
	return root
}

func newPartsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parts <package>",
		Short: "List the parts reachable from the package relationships",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readCLIOptions(cmd, args)
			if err != nil {
				return err
			}
			pkg, err := openPackage(opts)
			if err != nil {
				return err
			}
			return printParts(cmd.OutOrStdout(), pkg)
		},
	}
}

func newRelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rels <package>",
		Short: "List the relationships of the package and of every part",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readCLIOptions(cmd, args)
			if err != nil {
				return err
			}
			pkg, err := openPackage(opts)
			if err != nil {
				return err
			}
			printRels(cmd.OutOrStdout(), pkg)
			return nil
		},
	}
}

func newResaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resave <package>",
		Short: "Load a package and write it back out",
		Long: `resave loads the package graph and serializes it again. Relationships
to missing parts and items no relationship reaches are left out of the
result.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := readCLIOptions(cmd, args)
			if err != nil {
				return err
			}
			return resave(opts)
		},
	}
	cmd.Flags().StringP("output", "o", "", "Output path (default: input with .resaved suffix)")
	cmd.Flags().Bool("dir", false, "Write an expanded directory instead of a zip archive")
	cmd.Flags().Bool("touch", false, "Bump the revision and modified time in the core properties")
	return cmd
}

func openPackage(opts cliOptions) (*opc.Package, error) {
	pkg, err := opc.Open(opts.InputPath, opc.Options{
		Factory: parts.NewFactory(),
		Logger:  opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug("opened package", "path", opts.InputPath)
	return pkg, nil
}

func resave(opts cliOptions) error {
	opts.Logger.Info("resaving package", "input", opts.InputPath, "output", opts.OutputPath)

	pkg, err := openPackage(opts)
	if err != nil {
		return err
	}

	if opts.Touch {
		cp, err := parts.CoreProperties(pkg)
		if err != nil {
			return err
		}
		if err := cp.SetRevision(cp.Revision() + 1); err != nil {
			return err
		}
		cp.SetModified(time.Now())
		cp.SetLastModifiedBy("opcpkg")
	}

	if opts.Dir {
		err = pkg.SaveDir(opts.OutputPath)
	} else {
		err = pkg.Save(opts.OutputPath)
	}
	if err != nil {
		return err
	}

	opts.Logger.Info("done", "output", opts.OutputPath, "parts", len(pkg.Parts()))
	return nil
}

func printParts(w io.Writer, pkg *opc.Package) error {
	for part := range pkg.IterParts() {
		blob, err := part.Blob()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%d", part.PartName(), part.ContentType(), len(blob))
		if img, ok := part.(*parts.ImagePart); ok {
			fmt.Fprintf(w, "\t%s", img.Digest())
			if width, height, err := img.Dimensions(); err == nil {
				fmt.Fprintf(w, "\t%dx%d", width, height)
			}
		}
		fmt.Fprintln(w)
	}
	return nil
}

func printRels(w io.Writer, pkg *opc.Package) {
	printRelSet(w, "/", pkg.Rels())
	for part := range pkg.IterParts() {
		printRelSet(w, string(part.PartName()), part.Rels())
	}
}

func printRelSet(w io.Writer, owner string, rels *opc.Relationships) {
	for _, rel := range rels.All() {
		target := rel.TargetRef() + " (External)"
		if name, err := rel.TargetPartName(); err == nil {
			target = string(name)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", owner, rel.RID(), path.Base(rel.RelType()), target)
	}
}
