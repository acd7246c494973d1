package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
)

var revealToken bool

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Request an access token with the client credentials grant",
	Args:  cobra.NoArgs,
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().BoolVar(&revealToken, "reveal", false, "Print the full access token")
}

type tokenView struct {
	AccessToken string    `json:"accessToken" yaml:"accessToken"`
	TokenType   string    `json:"tokenType" yaml:"tokenType"`
	ExpiresIn   int       `json:"expiresIn" yaml:"expiresIn"`
	ExpiresAt   time.Time `json:"expiresAt" yaml:"expiresAt"`
	Scope       string    `json:"scope,omitempty" yaml:"scope,omitempty"`
}

func runToken(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	token, err := a.tokens.Token(cmd.Context())
	if err != nil {
		return err
	}

	view := tokenView{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresIn:   token.ExpiresIn,
		ExpiresAt:   token.ExpiresAt().UTC(),
		Scope:       token.Scope,
	}
	if !revealToken {
		view.AccessToken = maskToken(view.AccessToken)
	}

	return render(cmd.OutOrStdout(), view, func(w io.Writer) error {
		fmt.Fprintf(w, "%s token issued\n", green("✓"))
		fmt.Fprintf(w, "  type:       %s\n", view.TokenType)
		fmt.Fprintf(w, "  expires in: %ds (%s)\n", view.ExpiresIn, view.ExpiresAt.Format(time.RFC3339))
		if view.Scope != "" {
			fmt.Fprintf(w, "  scope:      %s\n", view.Scope)
		}
		_, err := fmt.Fprintf(w, "  token:      %s\n", view.AccessToken)
		return err
	})
}

func maskToken(token string) string {
	if len(token) <= 12 {
		return "********"
	}
	return token[:8] + "..." + token[len(token)-4:]
}
