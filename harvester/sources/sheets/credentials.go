package sheets

import (
	"os"
	"path/filepath"

	"harvester/harvester/utils/apperrors"
)

// CredentialFiles are the service-account key names looked up, in order.
var CredentialFiles = []string{"credentials.json", "service_account.json", "google_credentials.json"}

// LocateCredentials returns the first credentials file that exists in dir.
func LocateCredentials(dir string) (string, error) {
	for _, name := range CredentialFiles {
		p := filepath.Join(dir, name)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", apperrors.CredentialsMissing(CredentialFiles)
}
