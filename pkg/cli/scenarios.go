package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wagmiprojects/shopify-api-js/internal/cliconfig"
	"github.com/wagmiprojects/shopify-api-js/pkg/catalog"
	"github.com/wagmiprojects/shopify-api-js/pkg/cli/internal/output"
	"github.com/wagmiprojects/shopify-api-js/pkg/scenario"
)

// ScenarioInfo is one row of the scenarios listing.
type ScenarioInfo struct {
	Key         string           `json:"key"`
	Path        string           `json:"path"`
	Family      string           `json:"family"`
	Description string           `json:"description,omitempty"`
	Response    catalog.Response `json:"response"`
}

// statefulDescriptions covers keys that have no catalog entry of their own.
var statefulDescriptions = []struct {
	key  catalog.Key
	desc string
}{
	{scenario.KeyRetries, "429 twice, then 200 until another scenario resets the counter"},
	{scenario.KeyRetryThenFail, "500, then 403; counter reset"},
	{scenario.KeyRetryThenSuccess, "429 with Retry-After, then 200; counter reset"},
	{scenario.KeyMaxRetries, "500 on every request"},
	{scenario.KeyEndTest, "200, then the server exits"},
}

func newScenariosCommand() *cobra.Command {
	var (
		catalogFile string
		jsonOut     bool
	)

	cmd := &cobra.Command{
		Use:     "scenarios",
		Aliases: []string{"list"},
		Short:   "List scenario keys and their responses",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := catalogFile
			if !cmd.Flags().Changed("catalog") {
				path = cliconfig.Load().CatalogFile
			}
			cat, err := loadCatalog(path)
			if err != nil {
				return fmt.Errorf("failed to load catalog: %w", err)
			}

			for _, k := range shadowedKeys(cat) {
				output.Warn(cmd.ErrOrStderr(), "catalog entry %q is ignored, the key is a stateful scenario", k)
			}

			rows := listScenarios(cat)
			if jsonOut {
				return output.JSON(cmd.OutOrStdout(), rows)
			}
			return printScenarios(cmd.OutOrStdout(), rows)
		},
	}
	cmd.Flags().StringVarP(&catalogFile, "catalog", "c", "", "JSON or YAML file with extra scenarios")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

// shadowedKeys returns catalog keys that the engine never reads because they
// name a stateful scenario.
func shadowedKeys(cat *catalog.Catalog) []catalog.Key {
	var keys []catalog.Key
	for _, s := range statefulDescriptions {
		if cat.Has(s.key) {
			keys = append(keys, s.key)
		}
	}
	return keys
}

// listScenarios returns stateful keys first, then catalog keys in order.
func listScenarios(cat *catalog.Catalog) []ScenarioInfo {
	rows := make([]ScenarioInfo, 0, cat.Len()+len(statefulDescriptions))
	engine := scenario.NewEngine(cat)

	for _, s := range statefulDescriptions {
		engine.Reset()
		rows = append(rows, ScenarioInfo{
			Key:         string(s.key),
			Path:        scenario.Path(s.key),
			Family:      scenario.FamilyOf(s.key).String(),
			Description: s.desc,
			Response:    engine.Respond(s.key).Response,
		})
	}
	for _, k := range cat.Keys() {
		if scenario.FamilyOf(k) != scenario.FamilyStatic {
			continue
		}
		rows = append(rows, ScenarioInfo{
			Key:      string(k),
			Path:     scenario.Path(k),
			Family:   scenario.FamilyStatic.String(),
			Response: cat.Lookup(k),
		})
	}
	return rows
}

func printScenarios(w io.Writer, rows []ScenarioInfo) error {
	tw := output.Table(w)
	fmt.Fprintln(tw, "KEY\tFAMILY\tFIRST RESPONSE\tHEADERS\tNOTES")
	for _, r := range rows {
		headers := make([]string, 0, len(r.Response.Headers))
		for _, h := range r.Response.Headers {
			headers = append(headers, h.Name+": "+h.Value)
		}
		fmt.Fprintf(tw, "%s\t%s\t%d %s\t%s\t%s\n",
			r.Key, r.Family, r.Response.StatusCode, r.Response.StatusText,
			strings.Join(headers, "; "), r.Description)
	}
	return tw.Flush()
}
