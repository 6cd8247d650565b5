package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/meanun/linkshelf/internal/store"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage runtime-added admins",
		Long:  "Adds, removes, and lists runtime-added admins directly in the database. Main admins come from the config file and are not managed here.",
	}

	cmd.AddCommand(newAdminAddCmd())
	cmd.AddCommand(newAdminRemoveCmd())
	cmd.AddCommand(newAdminListCmd())
	return cmd
}

func newAdminAddCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "add <user-id>",
		Short: "Grant admin access to a Telegram user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdminAdd(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "linkshelf.yaml", "path to Linkshelf config file")
	return cmd
}

func runAdminAdd(cmd *cobra.Command, configPath, rawID string) error {
	userID, err := parseUserID(rawID)
	if err != nil {
		return err
	}
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.IsMainAdmin(userID) {
		return fmt.Errorf("user %d is already a main admin", userID)
	}
	if err := store.AddAdmin(gormDB, userID); err != nil {
		if errors.Is(err, store.ErrAdminExists) {
			return fmt.Errorf("user %d is already an admin", userID)
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added admin %d\n", userID)
	return nil
}

func newAdminRemoveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "remove <user-id>",
		Short: "Revoke a runtime-added admin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdminRemove(cmd, configPath, args[0])
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "linkshelf.yaml", "path to Linkshelf config file")
	return cmd
}

func runAdminRemove(cmd *cobra.Command, configPath, rawID string) error {
	userID, err := parseUserID(rawID)
	if err != nil {
		return err
	}
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.IsMainAdmin(userID) {
		return fmt.Errorf("user %d is a main admin; remove them from the config file instead", userID)
	}
	if err := store.RemoveAdmin(gormDB, userID); err != nil {
		if errors.Is(err, store.ErrAdminNotFound) {
			return fmt.Errorf("user %d is not an admin", userID)
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed admin %d\n", userID)
	return nil
}

func newAdminListCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all admins",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdminList(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "linkshelf.yaml", "path to Linkshelf config file")
	return cmd
}

func runAdminList(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	added, err := store.ListAdmins(gormDB)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "Main admins (config):")
	for _, id := range cfg.MainAdmins {
		fmt.Fprintf(out, "  %d\n", id)
	}
	fmt.Fprintf(out, "Added admins (%d):\n", len(added))
	for _, id := range added {
		fmt.Fprintf(out, "  %d\n", id)
	}
	return nil
}

func parseUserID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user id %q", raw)
	}
	return id, nil
}
