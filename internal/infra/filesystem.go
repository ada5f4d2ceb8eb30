package infra

import (
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"

	"github.com/modwarden/modwarden/internal/config"
)

// GetWorkDir resolves (and creates, if needed) the bot's state directory.
func GetWorkDir(path ...string) string {
	parts := append([]string{config.Get().DotPath}, path...)
	workDir, err := homedir.Expand(filepath.Join(parts...))
	if err != nil {
		log.WithError(err).Fatalln("cant expand work dir")
	}
	if err = os.MkdirAll(workDir, os.ModePerm); err != nil {
		log.WithError(err).Fatalln("cant create work dir")
	}
	return workDir
}
