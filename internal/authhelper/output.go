package authhelper

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/tonimelisma/onedrive-skill/internal/config"
	"github.com/tonimelisma/onedrive-skill/internal/graph"
)

const ruleWidth = 70

// Token display keeps this many leading and trailing characters.
const (
	tokenHeadLen = 40
	tokenTailLen = 20
	shortHeadLen = 8
)

// truncateToken shortens a token for display. Tokens too short for the
// head...tail form only show their first few characters.
func truncateToken(tok string) string {
	if len(tok) > tokenHeadLen+tokenTailLen {
		return tok[:tokenHeadLen] + "..." + tok[len(tok)-tokenTailLen:]
	}

	return tok[:min(len(tok), shortHeadLen)] + "..."
}

func (s *Session) println() {
	fmt.Fprintln(s.out)
}

func (s *Session) rule(ch rune) {
	fmt.Fprintln(s.out, strings.Repeat(string(ch), ruleWidth))
}

func (s *Session) printBanner() {
	s.rule('=')
	color.New(color.Bold).Fprintln(s.out, "  OneDrive Skill - Authentication Helper")
	s.rule('=')
	s.println()
	fmt.Fprintln(s.out, "This helper signs you in to Microsoft OneDrive")
	fmt.Fprintln(s.out, "and obtains access tokens for the OneDrive skill.")
	s.println()
}

func (s *Session) printInstructions() {
	color.New(color.Bold).Fprintln(s.out, "BEFORE YOU START:")
	s.println()
	fmt.Fprint(s.out, `1. Go to https://portal.azure.com/
2. Navigate to: Azure Active Directory > App registrations
3. Click 'New registration' and create an app with:
   - Name: OneDrive Skill
   - Supported account types: Personal Microsoft accounts
   - Redirect URI: Public client/native > http://localhost

4. In your app, go to 'API permissions' and add:
   - Microsoft Graph > Delegated permissions:
     - Files.ReadWrite
     - User.Read
     - offline_access (for refresh tokens)

5. Copy your 'Application (client) ID' from the Overview page
`)
	s.println()
	s.rule('-')
	s.println()
}

func (s *Session) printTokens(res *graph.LoginResult) {
	s.println()
	s.rule('=')
	color.New(color.FgGreen, color.Bold).Fprintln(s.out, "Authentication successful!")
	s.rule('=')
	s.println()

	fmt.Fprintln(s.out, "Your Tokens:")
	s.println()
	fmt.Fprintln(s.out, "Access Token:")
	fmt.Fprintf(s.out, "  %s\n", truncateToken(res.AccessToken))
	s.println()

	if res.RefreshToken != "" {
		fmt.Fprintln(s.out, "Refresh Token:")
		fmt.Fprintf(s.out, "  %s\n", truncateToken(res.RefreshToken))
		s.println()
	}

	if !res.Expiry.IsZero() {
		minutes := int(res.ExpiresIn(s.now()).Minutes())
		fmt.Fprintf(s.out, "Access token expires in: %d minutes\n", minutes)
		s.println()
	}
}

func (s *Session) printExportInstructions(accessToken string) {
	s.println()
	fmt.Fprintln(s.out, "To use these tokens, set them as environment variables:")
	s.println()
	fmt.Fprintln(s.out, "On Linux/Mac:")
	fmt.Fprintf(s.out, "  export %s=%q\n", config.EnvAccessToken, accessToken)
	s.println()
	fmt.Fprintln(s.out, "On Windows (PowerShell):")
	fmt.Fprintf(s.out, "  $env:%s=%q\n", config.EnvAccessToken, accessToken)
}

func (s *Session) printClosing() {
	s.println()
	s.rule('=')
	color.New(color.FgGreen, color.Bold).Fprintln(s.out, "Setup Complete!")
	s.rule('=')
	s.println()
	fmt.Fprintln(s.out, "Next steps:")
	fmt.Fprintln(s.out, "  onedrive-skill whoami")
	fmt.Fprintln(s.out, "  onedrive-skill ls")
	s.println()
	color.New(color.FgYellow).Fprintln(s.out, "Security reminders:")
	fmt.Fprintln(s.out, "  - Access tokens expire after about an hour; rerun onedrive-auth to get a new one")
	fmt.Fprintln(s.out, "  - Never commit the .env file to version control")
	fmt.Fprintln(s.out, "  - Add .env to your .gitignore file")
	s.println()
}
