package cli

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"hackit/docs"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var httpMethods = map[string]struct{}{
	"get": {}, "put": {}, "post": {}, "delete": {}, "patch": {}, "head": {}, "options": {},
}

// apiSurface maps path -> method -> response codes.
type apiSurface map[string]map[string]map[string]struct{}

func OpenAPICmd() *cobra.Command {
	var basePath, revisionPath string
	cmd := &cobra.Command{
		Use:   "openapi",
		Short: "Check the API document for backward-incompatible changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(basePath) == "" {
				return errors.New("--base is required")
			}
			base, err := loadSurfaceFile(basePath)
			if err != nil {
				return fmt.Errorf("load base: %w", err)
			}

			var revision apiSurface
			if revisionPath == "" {
				revision, err = parseSurface([]byte(docs.SwaggerInfo.ReadDoc()))
			} else {
				revision, err = loadSurfaceFile(revisionPath)
			}
			if err != nil {
				return fmt.Errorf("load revision: %w", err)
			}

			if issues := breakingChanges(base, revision); len(issues) > 0 {
				for _, issue := range issues {
					fmt.Fprintf(cmd.ErrOrStderr(), "- %s\n", issue)
				}
				return fmt.Errorf("backward compatibility check failed (%d issues)", len(issues))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "openapi compatibility check passed")
			return nil
		},
	}
	cmd.Flags().StringVar(&basePath, "base", "", "Published swagger document (YAML or JSON)")
	cmd.Flags().StringVar(&revisionPath, "revision", "", "Revised document (defaults to the built-in API doc)")
	return cmd
}

func loadSurfaceFile(path string) (apiSurface, error) {
	// #nosec G304: path comes from CLI flags in an operator tool
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseSurface(raw)
}

// parseSurface reads a swagger document; JSON parses as YAML.
func parseSurface(raw []byte) (apiSurface, error) {
	var doc struct {
		Paths map[string]map[string]yaml.Node `yaml:"paths"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if doc.Paths == nil {
		return nil, errors.New("missing top-level paths field")
	}

	surface := apiSurface{}
	for path, ops := range doc.Paths {
		methods := map[string]map[string]struct{}{}
		for method, node := range ops {
			method = strings.ToLower(strings.TrimSpace(method))
			if _, ok := httpMethods[method]; !ok {
				continue
			}
			var op struct {
				Responses map[string]yaml.Node `yaml:"responses"`
			}
			if err := node.Decode(&op); err != nil {
				return nil, fmt.Errorf("%s %s: %w", method, path, err)
			}
			codes := map[string]struct{}{}
			for code := range op.Responses {
				if code = strings.ToLower(strings.TrimSpace(code)); code != "" {
					codes[code] = struct{}{}
				}
			}
			methods[method] = codes
		}
		if len(methods) > 0 {
			surface[path] = methods
		}
	}
	return surface, nil
}

// breakingChanges lists removed paths, operations and response codes.
func breakingChanges(base, revision apiSurface) []string {
	var issues []string
	for path, baseOps := range base {
		revOps, ok := revision[path]
		if !ok {
			issues = append(issues, "removed path: "+path)
			continue
		}
		for method, codes := range baseOps {
			revCodes, ok := revOps[method]
			if !ok {
				issues = append(issues, fmt.Sprintf("removed operation: %s %s", strings.ToUpper(method), path))
				continue
			}
			for code := range codes {
				if _, ok := revCodes[code]; !ok {
					issues = append(issues, fmt.Sprintf("removed response code: %s %s -> %s", strings.ToUpper(method), path, strings.ToUpper(code)))
				}
			}
		}
	}
	sort.Strings(issues)
	return issues
}
