package gitrepo

import (
	"fmt"
	"strings"
)

const (
	sshProtocolPrefixConstant       = "ssh://"
	httpsProtocolPrefixConstant     = "https://"
	gitUserPrefixConstant           = "git@"
	sshUserDelimiterConstant        = "@"
	scpPathDelimiterConstant        = ":"
	pathSeparatorConstant           = "/"
	gitSuffixConstant               = ".git"
	ownerRepositoryTemplateConstant = "%s/%s"
	remoteParseErrorTemplateConstant = "%s: %s"
	invalidRemoteURLMessageConstant  = "invalid remote url"
	emptyRemoteURLMessageConstant    = "remote url must be provided"
)

// RemoteProtocol enumerates supported git remote protocols.
type RemoteProtocol string

// Supported remote protocols.
const (
	RemoteProtocolSSH   RemoteProtocol = "ssh"
	RemoteProtocolHTTPS RemoteProtocol = "https"
)

// RemoteURL represents a structured git remote URL.
type RemoteURL struct {
	Protocol   RemoteProtocol
	Host       string
	Owner      string
	Repository string
}

// OwnerRepository renders the owner/repository tuple for log fields.
func (remote RemoteURL) OwnerRepository() string {
	return fmt.Sprintf(ownerRepositoryTemplateConstant, remote.Owner, remote.Repository)
}

// RemoteURLParseError indicates a remote string could not be parsed.
type RemoteURLParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(remoteParseErrorTemplateConstant, parseError.Input, parseError.Message)
}

// ParseRemoteURL converts a textual remote URL into a structured
// representation. Supported forms are ssh://git@host/owner/repo.git,
// git@host:owner/repo.git, and https://host/owner/repo.git.
func ParseRemoteURL(remote string) (RemoteURL, error) {
	trimmedRemote := strings.TrimSpace(remote)
	if len(trimmedRemote) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: emptyRemoteURLMessageConstant}
	}

	if remainder, isSSH := strings.CutPrefix(trimmedRemote, sshProtocolPrefixConstant); isSSH {
		return parseSSHRemote(remote, remainder)
	}
	if strings.HasPrefix(trimmedRemote, gitUserPrefixConstant) {
		return parseSSHRemote(remote, trimmedRemote)
	}
	if remainder, isHTTPS := strings.CutPrefix(trimmedRemote, httpsProtocolPrefixConstant); isHTTPS {
		return parseHTTPSRemote(remote, remainder)
	}

	return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
}

func parseSSHRemote(original string, remainder string) (RemoteURL, error) {
	_, hostAndPath, hasUser := strings.Cut(remainder, sshUserDelimiterConstant)
	if !hasUser {
		hostAndPath = remainder
	}

	host, path, hasSCPDelimiter := strings.Cut(hostAndPath, scpPathDelimiterConstant)
	if !hasSCPDelimiter {
		host, path, _ = strings.Cut(hostAndPath, pathSeparatorConstant)
	}
	if len(host) == 0 || len(path) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: original, Message: invalidRemoteURLMessageConstant}
	}

	owner, repository, splitError := splitOwnerAndRepository(original, path)
	if splitError != nil {
		return RemoteURL{}, splitError
	}

	return RemoteURL{Protocol: RemoteProtocolSSH, Host: host, Owner: owner, Repository: repository}, nil
}

func parseHTTPSRemote(original string, remainder string) (RemoteURL, error) {
	host, path, hasPath := strings.Cut(remainder, pathSeparatorConstant)
	if !hasPath || len(host) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: original, Message: invalidRemoteURLMessageConstant}
	}

	owner, repository, splitError := splitOwnerAndRepository(original, path)
	if splitError != nil {
		return RemoteURL{}, splitError
	}

	return RemoteURL{Protocol: RemoteProtocolHTTPS, Host: host, Owner: owner, Repository: repository}, nil
}

func splitOwnerAndRepository(original string, path string) (string, string, error) {
	trimmedPath := strings.TrimSuffix(strings.Trim(path, pathSeparatorConstant), gitSuffixConstant)
	segments := strings.Split(trimmedPath, pathSeparatorConstant)
	if len(segments) < 2 {
		return "", "", RemoteURLParseError{Input: original, Message: invalidRemoteURLMessageConstant}
	}

	repository := segments[len(segments)-1]
	owner := strings.Join(segments[:len(segments)-1], pathSeparatorConstant)
	if len(owner) == 0 || len(repository) == 0 {
		return "", "", RemoteURLParseError{Input: original, Message: invalidRemoteURLMessageConstant}
	}

	return owner, repository, nil
}
