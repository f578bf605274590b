package main

import (
	"encoding/base64"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/sirupsen/logrus"
)

func main() {
	out := flag.String("out", "./data/vapid_keys.env", "file the keys are written to")
	subject := flag.String("subject", "mailto:referee@example.com", "contact the push services may reach")
	flag.Parse()

	privateKey, publicKey, err := webpush.GenerateVAPIDKeys()
	if err != nil {
		logrus.Fatalf("Failed to generate VAPID keys: %v", err)
	}
	if _, err := base64.RawURLEncoding.DecodeString(publicKey); err != nil {
		logrus.Fatalf("Generated public key is not base64url: %v", err)
	}

	envContent := fmt.Sprintf(`# Push notifications for captains
VAPID_PUBLIC_KEY=%s
VAPID_PRIVATE_KEY=%s
VAPID_SUBJECT=%s
`, publicKey, privateKey, *subject)

	if err := os.MkdirAll(filepath.Dir(*out), 0755); err != nil {
		logrus.Fatalf("Failed to create %s: %v", filepath.Dir(*out), err)
	}
	if err := os.WriteFile(*out, []byte(envContent), 0600); err != nil {
		logrus.Fatalf("Failed to write keys: %v", err)
	}

	logrus.Infof("VAPID keys saved to %s", *out)
	fmt.Print(envContent)
}
