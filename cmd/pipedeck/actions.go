package main

import (
	"strings"

	"github.com/aretw0/pipedeck/pkg/action"
	"github.com/aretw0/pipedeck/pkg/domain"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Log in to the pipe network",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pw, err := password(cmd, "Password")
		if err != nil {
			return err
		}
		api, _ := cmd.Flags().GetString("api")

		params := map[string]any{"username": args[0], "password": pw}
		setIf(params, "api", api)
		return runAction(cmd, domain.ActionLogin, params)
	},
}

var uploadCmd = &cobra.Command{
	Use:   "upload <local> <remote>",
	Short: "Upload a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		tier, _ := cmd.Flags().GetString("tier")
		encrypt, _ := cmd.Flags().GetBool("encrypt")

		params := map[string]any{"local": args[0], "remote": args[1], "tier": tier}
		if encrypt {
			pw, err := password(cmd, "Encryption password")
			if err != nil {
				return err
			}
			params["encrypt"] = true
			params["password"] = pw
		}
		return runAction(cmd, domain.ActionUpload, params)
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download <remote> <save-as>",
	Short: "Download a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		decrypt, _ := cmd.Flags().GetBool("decrypt")
		legacy, _ := cmd.Flags().GetBool("legacy")

		params := map[string]any{"remote": args[0], "save_as": args[1], "legacy": legacy}
		if decrypt {
			pw, err := password(cmd, "Decryption password")
			if err != nil {
				return err
			}
			params["decrypt"] = true
			params["password"] = pw
		}
		return runAction(cmd, domain.ActionDownload, params)
	},
}

var linkCmd = &cobra.Command{
	Use:   "link <remote>",
	Short: "Create a public link for an uploaded file",
	Long:  `Creates a public link. The remote name must appear in the local upload log.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		description, _ := cmd.Flags().GetString("description")
		api, _ := cmd.Flags().GetString("api")

		params := map[string]any{"remote": args[0]}
		setIf(params, "title", title)
		setIf(params, "description", description)
		setIf(params, "api", api)
		return runAction(cmd, domain.ActionCreateLink, params)
	},
}

func cryptCmd(use, short string, kind domain.ActionKind) *cobra.Command {
	c := &cobra.Command{
		Use:   use + " <input> <output>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := password(cmd, "Password")
			if err != nil {
				return err
			}
			return runAction(cmd, kind, map[string]any{"input": args[0], "output": args[1], "password": pw})
		},
	}
	c.Flags().String("password", "", "Password (prefer PIPE_PASSWORD or the prompt)")
	return c
}

func init() {
	loginCmd.Flags().String("password", "", "Password (prefer PIPE_PASSWORD or the prompt)")
	loginCmd.Flags().String("api", "", "API endpoint (default from config)")

	uploadCmd.Flags().String("tier", action.Tiers[0], "Upload tier: "+strings.Join(action.Tiers, ", "))
	uploadCmd.Flags().Bool("encrypt", false, "Encrypt before uploading")
	uploadCmd.Flags().String("password", "", "Encryption password")

	downloadCmd.Flags().Bool("decrypt", false, "Decrypt after downloading")
	downloadCmd.Flags().Bool("legacy", false, "Use the legacy download path")
	downloadCmd.Flags().String("password", "", "Decryption password")

	linkCmd.Flags().String("title", "", "Link title")
	linkCmd.Flags().String("description", "", "Link description")
	linkCmd.Flags().String("api", "", "API endpoint (default from config)")

	rootCmd.AddCommand(loginCmd, uploadCmd, downloadCmd, linkCmd,
		cryptCmd("encrypt", "Encrypt a local file", domain.ActionEncryptLocal),
		cryptCmd("decrypt", "Decrypt a local file", domain.ActionDecryptLocal),
	)
}
