package runner

import (
	"os/user"
	"path/filepath"
	"strings"
)

// PathExpand expands a leading "~" or "~user" in the path to the
// corresponding home directory
func PathExpand(path string) (string, error) {
	if len(path) == 0 || path[0] != '~' {
		return path, nil
	}

	var head string
	rest := ""
	if pos := strings.IndexAny(path, "/\\"); pos == -1 {
		head = path
	} else {
		head = path[0:pos]
		rest = path[pos+1:]
	}

	var usr *user.User
	var err error
	if head == "~" {
		usr, err = user.Current()
	} else {
		usr, err = user.Lookup(head[1:])
	}
	if err != nil {
		return "", err
	}
	return filepath.Join(usr.HomeDir, rest), nil
}
