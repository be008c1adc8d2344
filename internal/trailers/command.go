package trailers

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

const (
	// FilterCommandName is the hidden subcommand invoked by the history
	// rewrite facility as its message filter.
	FilterCommandName = "trailer-filter"
	// TokenFlagName selects the trailer token being replaced.
	TokenFlagName = "token"
	// ValueFlagName supplies one replacement value; repeatable.
	ValueFlagName = "value"

	commandShortDescriptionConstant = "Rewrite trailer lines of a commit message supplied on standard input"
	commandLongDescriptionConstant  = "trailer-filter reads a commit message from standard input, replaces every trailer line carrying the selected token with the supplied values, and writes the rewritten message to standard output. It is invoked per commit by git filter-branch."
	tokenFlagUsageConstant          = "Trailer token to replace (for example Reviewed-by)"
	valueFlagUsageConstant          = "Replacement trailer value; repeat the flag to install several values"
	tokenRequiredMessageConstant    = "trailer token must be provided"
	inputReadErrorTemplateConstant  = "unable to read commit message: %w"
	outputWriteErrorTemplateConstant = "unable to write rewritten message: %w"
)

// ErrTokenRequired indicates the token flag was empty.
var ErrTokenRequired = errors.New(tokenRequiredMessageConstant)

// CommandBuilder assembles the hidden trailer-filter command.
type CommandBuilder struct{}

// Build constructs the trailer-filter command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:    FilterCommandName,
		Short:  commandShortDescriptionConstant,
		Long:   commandLongDescriptionConstant,
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE:   builder.run,
	}

	command.Flags().String(TokenFlagName, "", tokenFlagUsageConstant)
	command.Flags().StringArray(ValueFlagName, nil, valueFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	token, tokenFlagError := command.Flags().GetString(TokenFlagName)
	if tokenFlagError != nil {
		return tokenFlagError
	}
	if len(strings.TrimSpace(token)) == 0 {
		return ErrTokenRequired
	}

	values, valueFlagError := command.Flags().GetStringArray(ValueFlagName)
	if valueFlagError != nil {
		return valueFlagError
	}

	messageBytes, readError := io.ReadAll(command.InOrStdin())
	if readError != nil {
		return fmt.Errorf(inputReadErrorTemplateConstant, readError)
	}

	rewrittenMessage := Rewrite(string(messageBytes), token, values)

	if _, writeError := io.WriteString(command.OutOrStdout(), rewrittenMessage); writeError != nil {
		return fmt.Errorf(outputWriteErrorTemplateConstant, writeError)
	}

	return nil
}
