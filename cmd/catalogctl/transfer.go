package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/coldenflo/ICeducation/model"
	"github.com/coldenflo/ICeducation/services"
	"github.com/coldenflo/ICeducation/utils/validation"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newExportCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the stored catalogue as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := catalogue.Store.Snapshot(cmd.Context())
			if err != nil {
				return fmt.Errorf("read catalogue: %w", err)
			}

			var w io.Writer = cmd.OutOrStdout()
			if file != "" {
				f, err := os.Create(file)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(snapshot)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Write to this file instead of stdout")
	return cmd
}

func newImportCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Create or update institutions from a JSON or YAML file",
		Long: `Read institutions from a JSON or YAML file and save each one. The file holds
either a list of institutions or an exported catalogue. Entries whose id
already exists replace the stored record; entries without an id get a new one.
A missing or outdated catalogue is seeded before anything is imported.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			list, err := decodeInstitutions(args[0], data)
			if err != nil {
				return err
			}
			if err := prepareImport(list); err != nil {
				return err
			}
			if dryRun {
				return render(cmd.OutOrStdout(), list, institutionHeaders, institutionRows(list))
			}

			// migrate an outdated catalogue first so the import is not wiped by it later
			ctx := cmd.Context()
			catalogue.Store.Initialize(ctx)
			for _, inst := range list {
				if err := catalogue.Store.Create(ctx, inst); err != nil {
					return fmt.Errorf("save %s: %w", inst.ID, err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d institutions\n", len(list))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate and print without saving")
	return cmd
}

// decodeInstitutions accepts a bare list or a {version, institutions}
// document. The extension picks YAML; anything else is read as JSON.
func decodeInstitutions(name string, data []byte) ([]model.Institution, error) {
	ext := strings.ToLower(filepath.Ext(name))
	isYAML := ext == ".yaml" || ext == ".yml"

	unmarshal := json.Unmarshal
	if isYAML {
		unmarshal = yaml.Unmarshal
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%s is empty", name)
	}

	var list []model.Institution
	if isList(trimmed, isYAML) {
		if err := unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		return list, nil
	}

	var doc struct {
		Institutions []model.Institution `json:"institutions" yaml:"institutions"`
		// older exports used this name
		Universities []model.Institution `json:"universities" yaml:"universities"`
	}
	if err := unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	if doc.Institutions != nil {
		return doc.Institutions, nil
	}
	return doc.Universities, nil
}

func isList(data []byte, isYAML bool) bool {
	if !isYAML {
		return data[0] == '['
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil || len(node.Content) == 0 {
		return false
	}
	return node.Content[0].Kind == yaml.SequenceNode
}

// prepareImport fills ids and slugs and validates every entry before
// anything is written
func prepareImport(list []model.Institution) error {
	v := validation.NewValidator()
	for i := range list {
		inst := &list[i]
		if inst.ID == "" {
			inst.ID = uuid.New().String()
		}
		if inst.Slug == "" {
			inst.Slug = services.Slugify(inst.Name)
		}
		inst.Normalize()

		if err := v.ValidateStruct(*inst); err != nil {
			fields := validation.FormatValidationErrors(err)
			return fmt.Errorf("entry %d (%s): invalid %v", i+1, inst.Name, fields)
		}
	}
	return nil
}
