package cmd

import (
	"fmt"
	"os"
	"strings"

	"uniforum/devserver"
	"uniforum/term"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var devServerCmd = &cobra.Command{
	Use:   "dev-server",
	Short: "Run a local forum server with demo data",
	Args:  cobra.NoArgs,
	Run:   devServer,
}

func init() {
	RootCmd.AddCommand(devServerCmd)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	devServerCmd.Flags().StringP("port", "p", port, "Port to listen on")
}

func devServer(cmd *cobra.Command, args []string) {
	port, _ := cmd.Flags().GetString("port")

	s, err := devserver.New(devserver.Options{})
	if err != nil {
		term.OutputErrorAndExit("Error starting dev server: %v", err)
	}

	fmt.Println(color.New(color.Bold, term.ColorHiGreen).Sprintf("🏫 Dev server listening on http://127.0.0.1:%s", port))
	fmt.Printf("Demo accounts: %s\n", strings.Join(s.Accounts(), ", "))
	fmt.Printf("Password for all of them: %s\n", color.New(color.Bold).Sprint(devserver.SeedPassword))
	fmt.Println()
	fmt.Printf("Point the client at it with --host http://127.0.0.1:%s\n", port)

	if err := s.ListenAndServe(port); err != nil {
		term.OutputErrorAndExit("Dev server stopped: %v", err)
	}
}
