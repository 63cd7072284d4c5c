package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/procoachmastery/website/internal/i18n"
)

var localizeLocale string

var localizeCmd = &cobra.Command{
	Use:   "localize <path>...",
	Short: "Rewrite site paths into a locale",
	Long: `Print each path rewritten so its first segment is the requested locale.
This is the same rewrite the language switcher and the locale redirect use.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		locale, err := parseLocaleFlag(localizeLocale)
		if err != nil {
			return err
		}
		for _, path := range args {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), i18n.Localize(path, locale)); err != nil {
				return err
			}
		}
		return nil
	},
}

func parseLocaleFlag(value string) (i18n.Locale, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return i18n.Default, nil
	}
	locale, ok := i18n.Parse(value)
	if !ok {
		supported := make([]string, 0, 2)
		for _, l := range i18n.Supported() {
			supported = append(supported, l.String())
		}
		return "", fmt.Errorf("unsupported locale %q (supported: %s)", value, strings.Join(supported, ", "))
	}
	return locale, nil
}

func init() {
	rootCmd.AddCommand(localizeCmd)
	localizeCmd.Flags().StringVarP(&localizeLocale, "locale", "l", string(i18n.Default), "target locale (nl|en)")
}
