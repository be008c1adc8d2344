package gitrepo

import (
	"fmt"
	"os"

	shellquote "github.com/kballard/go-shellquote"
)

const (
	trailerFilterSubcommandConstant      = "trailer-filter"
	trailerTokenFlagConstant             = "--token"
	trailerValueFlagConstant             = "--value"
	executablePathErrorTemplateConstant  = "unable to resolve executable path: %w"
)

// TrailerFilterCommandBuilder produces the message-filter command line handed
// to the history rewrite facility. The command must read a commit message on
// standard input and write the rewritten message to standard output.
type TrailerFilterCommandBuilder interface {
	Build(trailerToken string, trailerValues []string) (string, error)
}

// ExecutableFilterCommandBuilder re-invokes the running executable's hidden
// trailer-filter subcommand as the message filter.
type ExecutableFilterCommandBuilder struct{}

// Build assembles a shell-safe filter command for the supplied token and values.
func (builder ExecutableFilterCommandBuilder) Build(trailerToken string, trailerValues []string) (string, error) {
	executablePath, executableError := os.Executable()
	if executableError != nil {
		return "", fmt.Errorf(executablePathErrorTemplateConstant, executableError)
	}

	commandWords := []string{executablePath, trailerFilterSubcommandConstant, trailerTokenFlagConstant, trailerToken}
	for _, trailerValue := range trailerValues {
		commandWords = append(commandWords, trailerValueFlagConstant, trailerValue)
	}

	return shellquote.Join(commandWords...), nil
}
