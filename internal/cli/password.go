package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/GTDGit/panel_api/internal/service"
	"github.com/GTDGit/panel_api/internal/utils"
)

const minPasswordLength = 8

func newHashPasswordCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "hash-password",
		Short: "Hash an admin password for ADMIN_PASSWORD_HASH",
		Long: `Prompt for the admin password and print its bcrypt hash.

Put the output in ADMIN_PASSWORD_HASH; it takes precedence over
ADMIN_PASSWORD.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				if !isTerminal() {
					return errors.New("no terminal: pass --password")
				}
				p, err := promptPassword()
				if err != nil {
					return err
				}
				password = p
			}
			if err := validatePassword(password); err != nil {
				return err
			}

			hash, err := service.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password to hash (prompted when empty)")
	return cmd
}

func newSecretCmd() *cobra.Command {
	var size int

	cmd := &cobra.Command{
		Use:   "secret",
		Short: "Generate a random value for JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := utils.GenerateSecret(size)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), secret)
			return nil
		},
	}
	cmd.Flags().IntVar(&size, "bytes", 32, "number of random bytes")
	return cmd
}

func validatePassword(s string) error {
	if len(s) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	return nil
}

func promptPassword() (string, error) {
	prompt := promptui.Prompt{
		Label:    "Admin password",
		Mask:     '*',
		Validate: validatePassword,
	}
	password, err := prompt.Run()
	if err != nil {
		if err == promptui.ErrInterrupt {
			os.Exit(0)
		}
		return "", err
	}

	confirm := promptui.Prompt{
		Label: "Confirm password",
		Mask:  '*',
	}
	again, err := confirm.Run()
	if err != nil {
		if err == promptui.ErrInterrupt {
			os.Exit(0)
		}
		return "", err
	}
	if again != password {
		return "", errors.New("passwords do not match")
	}
	return password, nil
}
