package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"captiondesk/internal/api"
	"captiondesk/internal/config"
	"captiondesk/internal/textutil"
)

func newAuthCommand(ctx *commandContext) *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the backend bearer token",
	}
	authCmd.AddCommand(newAuthLoginCommand(ctx))
	authCmd.AddCommand(newAuthLogoutCommand(ctx))
	authCmd.AddCommand(newAuthStatusCommand(ctx))
	return authCmd
}

func newAuthLoginCommand(ctx *commandContext) *cobra.Command {
	var token string
	var verify bool
	cmd := &cobra.Command{
		Use:   "login --token TOKEN",
		Short: "Store a bearer token (use --token - to read it from stdin)",
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := readToken(token, cmd.InOrStdin())
			if err != nil {
				return err
			}
			return ctx.withClient(cmd, func(s *session) error {
				reqCtx := commandCtx(cmd)
				if err := s.creds.SetToken(reqCtx, value); err != nil {
					return fmt.Errorf("store token: %w", err)
				}
				if verify {
					if _, err := s.client.ListQueue(reqCtx); err != nil {
						if api.IsUnauthorized(err) {
							return errors.New("the backend rejected the token; it was not kept")
						}
						fmt.Fprintf(cmd.ErrOrStderr(), "Could not verify token: %s\n", api.Message(err))
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Token stored.")
				if summary := describeToken(value, time.Now()); summary != "" {
					fmt.Fprintln(cmd.OutOrStdout(), summary)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&token, "token", "", "Bearer token, or - to read from stdin")
	cmd.Flags().BoolVar(&verify, "verify", false, "Check the token against the backend before keeping it")
	return cmd
}

func newAuthLogoutCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored bearer token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd, func(s *session) error {
				if err := s.creds.Clear(commandCtx(cmd)); err != nil {
					return fmt.Errorf("clear token: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Token removed.")
				if strings.TrimSpace(s.cfg.API.Token) != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "Note: api.token or %s is set and will be stored again on the next run.\n", config.EnvToken)
				}
				return nil
			})
		},
	}
}

func newAuthStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a bearer token is stored",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(cmd, func(s *session) error {
				token, err := s.creds.Token(commandCtx(cmd))
				if err != nil {
					return fmt.Errorf("read token: %w", err)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Backend:     %s\n", s.cfg.API.BaseURL)
				if token == "" {
					fmt.Fprintln(out, "Signed in:   no")
					return nil
				}
				fmt.Fprintln(out, "Signed in:   yes")
				fmt.Fprintf(out, "Token:       %s\n", maskToken(token))
				if summary := describeToken(token, time.Now()); summary != "" {
					fmt.Fprintln(out, summary)
				}
				return nil
			})
		},
	}
}

func readToken(flag string, stdin io.Reader) (string, error) {
	value := strings.TrimSpace(flag)
	if value == "-" {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read token: %w", err)
		}
		value = strings.TrimSpace(line)
	}
	if value == "" {
		if env := strings.TrimSpace(os.Getenv(config.EnvToken)); env != "" {
			return env, nil
		}
		return "", errors.New("a token is required (--token TOKEN or --token -)")
	}
	return value, nil
}

// describeToken summarizes JWT claims without verifying the signature. Opaque
// tokens yield "".
func describeToken(token string, now time.Time) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	var lines []string
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		lines = append(lines, fmt.Sprintf("Subject:     %s", sub))
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		state := "expires " + textutil.FormatAbsolute(exp.Time)
		if !exp.After(now) {
			state = "expired " + textutil.FormatRelative(exp.Time, now)
		}
		lines = append(lines, fmt.Sprintf("Expiry:      %s", state))
	}
	return strings.Join(lines, "\n")
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", 8) + token[len(token)-4:]
}
