package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/kronpano/city-map-poster/pkg/theme"
)

// themesCommand creates the themes command, which lists the available
// themes or lets the user pick one.
func (c *CLI) themesCommand() *cobra.Command {
	var pick bool

	cmd := &cobra.Command{
		Use:   "themes",
		Short: "List available poster themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := theme.NewStore(c.config().ThemesDir)
			infos := store.List()
			if len(infos) == 0 {
				printWarning("No themes found")
				return nil
			}
			if pick {
				return c.pickTheme(infos)
			}
			listThemes(infos)
			return nil
		},
	}

	cmd.Flags().BoolVar(&pick, "pick", false, "choose a theme interactively")
	return cmd
}

// listThemes prints one line per theme with a color swatch.
func listThemes(infos []theme.Info) {
	fmt.Println(StyleTitle.Render("Available Themes"))
	fmt.Println()
	for _, info := range infos {
		if info.Err != nil {
			printError("%s  %s", info.ID, StyleDim.Render(firstLine(info.Err.Error())))
			continue
		}
		fmt.Printf("%s  %s %s\n", swatch(info.Theme), StyleHighlight.Render(info.ID), StyleValue.Render(info.Name))
		if info.Description != "" {
			printDetail("%s", info.Description)
		}
	}
	fmt.Println()
	printNextStep("Render with a theme", "poster render -c <city> -C <country> -t <theme>")
}

// pickTheme runs the interactive picker and prints the render command for
// the chosen theme.
func (c *CLI) pickTheme(infos []theme.Info) error {
	final, err := tea.NewProgram(NewThemeListModel(infos)).Run()
	if err != nil {
		return err
	}
	m, ok := final.(ThemeListModel)
	if !ok || m.Selected == nil {
		printInfo("No theme selected")
		return nil
	}
	printSuccess("Selected %s", StyleHighlight.Render(m.Selected.ID))
	printNextStep("Render it", "poster render -c <city> -C <country> -t "+m.Selected.ID)
	return nil
}
