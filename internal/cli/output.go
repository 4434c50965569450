package cli

import (
	"fmt"
	"strings"

	"github.com/nest-oracle/nest-cli/internal/app"
	"github.com/nest-oracle/nest-cli/internal/cli/render"
	"github.com/nest-oracle/nest-cli/internal/domain"
	"github.com/spf13/cobra"
)

// emit stops the spinner and writes either the JSON view or the human output.
func emit(cmd *cobra.Command, a *app.App, jsonView any, human func() error) error {
	a.Progress.Stop()
	if a.Config.JSON {
		return render.JSON(cmd.OutOrStdout(), jsonView)
	}
	return human()
}

// parseID parses a 32-byte id argument such as an assertion or request id.
func parseID(kind, s string) (domain.Bytes32, error) {
	s = strings.TrimSpace(s)
	if !domain.IsValidBytes32(s) {
		return domain.Bytes32{}, fmt.Errorf("invalid %s %q: expected 32 bytes of hex", kind, s)
	}
	return domain.ParseBytes32(s)
}

// optionalRequestID parses the --request-id flag when given.
func optionalRequestID(s string) (*domain.Bytes32, error) {
	if s == "" {
		return nil, nil
	}
	id, err := parseID("request id", s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
