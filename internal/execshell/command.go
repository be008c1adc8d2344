package execshell

import "context"

const (
	gitExecutableNameConstant = "git"
)

// CommandName identifies a supported external executable.
type CommandName string

// Supported executables.
const (
	CommandGit CommandName = CommandName(gitExecutableNameConstant)
)

// CommandDetails describes a single external invocation.
//
// WorkingDirectory binds the invocation to a specific directory so multiple
// repositories can be operated on by the same process without relying on the
// process working directory. EnvironmentVariables are merged over the ambient
// environment for this invocation only.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand combines a CommandName with invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable results of executing a command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner represents the ability to spawn external processes.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}
