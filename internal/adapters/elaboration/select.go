package elaboration

import (
	"delivery-delay-service/internal/ports"
	"log"
	"strings"
)

// Options selects and configures an elaborator.
type Options struct {
	// ForceLocal selects the static elaborator regardless of credentials.
	ForceLocal bool
	Remote     RemoteConfig
}

// New returns the static elaborator when ForceLocal is set or no API key is
// configured, and the remote elaborator otherwise.
func New(opts Options) ports.Elaborator {
	if opts.ForceLocal {
		log.Printf("elaborator=%s reason=%q", staticName, "forced local")
		return NewStaticElaborator()
	}
	if strings.TrimSpace(opts.Remote.APIKey) == "" {
		log.Printf("elaborator=%s reason=%q", staticName, "no api key")
		return NewStaticElaborator()
	}

	remote, err := NewRemoteElaborator(opts.Remote)
	if err != nil {
		log.Printf("elaborator=%s reason=%q", staticName, err.Error())
		return NewStaticElaborator()
	}
	log.Printf("elaborator=%s model=%s base_url=%s", remoteName, remote.model, remote.baseURL)
	return remote
}
