package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/trunkgen/trunkgen/pkg/cli"
	"github.com/trunkgen/trunkgen/pkg/config"
	"github.com/trunkgen/trunkgen/pkg/util"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Host configuration templates",
	Long: `List the host configuration templates and render one.

Templates start from --base-config, the base_config setting, ./config.example.yml,
/opt/dvm/config.example.yml or the built-in document, in that order.

Examples:
  trunkgen templates list
  trunkgen templates render control-channel-p25 -o cc.yml`,
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		templates := config.Templates()
		if jsonOutput {
			return printJSON(templates)
		}
		t := cli.NewTable("TEMPLATE", "DESCRIPTION")
		for _, info := range templates {
			t.Row(info.Name, info.Description)
		}
		t.Flush()
		return nil
	},
}

var (
	renderOut        string
	renderBaseConfig string
)

var templatesRenderCmd = &cobra.Command{
	Use:   "render <template>",
	Short: "Render a template as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := renderBaseConfig
		if path == "" {
			path = userSettings.BaseConfig
		}
		base, source, err := config.BaseDocument(path)
		if err != nil {
			return err
		}
		util.WithField("source", source).Debug("rendering template")

		doc, err := config.Template(args[0], base)
		if err != nil {
			return err
		}

		if renderOut == "" {
			data, err := doc.Marshal()
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(data)
			return err
		}
		if err := doc.Save(renderOut); err != nil {
			return err
		}
		fmt.Printf("Wrote %s template to %s (base: %s)\n", args[0], renderOut, source)
		return nil
	},
}

func init() {
	addOutputFlags(templatesListCmd)
	templatesRenderCmd.Flags().StringVarP(&renderOut, "out", "o", "", "Output file (default: stdout)")
	templatesRenderCmd.Flags().StringVar(&renderBaseConfig, "base-config", "", "Base host configuration")

	templatesCmd.AddCommand(templatesListCmd, templatesRenderCmd)
}
