// internal/platform/di/infra.go
package di

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	appcfg "farmlink/internal/infra/config"
	"farmlink/internal/infra/database"
	firestoreinfra "farmlink/internal/infra/firestore"
)

// Infra is the shared runtime infrastructure.
// - owns external clients (Firestore/GCS/FirebaseAuth/SecretManager/Postgres)
// - owns env/config-resolved runtime settings
//
// Infra must NOT depend on routers, handlers, or usecases.
type Infra struct {
	Config    *appcfg.Config
	ProjectID string

	// Clients (owned; Close-managed)
	Firestore     *firestoreinfra.ClientWrapper
	GCS           *storage.Client
	FirebaseApp   *firebase.App
	FirebaseAuth  *firebaseauth.Client
	SecretManager *secretmanager.Client
	Postgres      *database.DB

	// Runtime settings (resolved once)
	ProductImageBucket string
	SendGridAPIKey     string
	SendGridFrom       string
}

// NewInfra initializes shared infra.
// Firestore is strict (return error). GCS, Firebase Auth, Secret
// Manager and Postgres are best-effort (warn + continue); the features
// behind them degrade gracefully when absent.
func NewInfra(ctx context.Context) (*Infra, error) {
	cfg := appcfg.Load()

	projectID := strings.TrimSpace(cfg.FirestoreProjectID)
	if projectID == "" {
		return nil, errors.New("di.infra: projectID is empty (set FIRESTORE_PROJECT_ID or GCP_PROJECT_ID)")
	}

	inf := &Infra{
		Config:             cfg,
		ProjectID:          projectID,
		ProductImageBucket: strings.TrimSpace(cfg.GCSBucket),
		SendGridFrom:       strings.TrimSpace(cfg.SendGridFrom),
	}

	// Credentials file (optional; mainly for local dev)
	credFile := strings.TrimSpace(cfg.FirestoreCredentialsFile)
	if credFile == "" {
		credFile = strings.TrimSpace(cfg.GCPCreds)
	}
	var clientOpts []option.ClientOption
	if credFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(credFile))
		log.Printf("[di.infra] Using credentials file for GCP clients")
	} else {
		log.Printf("[di.infra] Using Application Default Credentials")
	}

	// 1) Firestore (strict, with a boot-time connectivity check)
	{
		fs, err := firestoreinfra.NewClient(ctx, inf.ProjectID, credFile)
		if err != nil {
			return nil, fmt.Errorf("di.infra: firestore init failed (project=%s): %w", inf.ProjectID, err)
		}
		if err := fs.Ping(ctx); err != nil {
			_ = fs.Close()
			return nil, fmt.Errorf("di.infra: %w", err)
		}
		inf.Firestore = fs
	}

	// 2) GCS (best-effort; product image upload degrades without it)
	{
		gcsClient, err := storage.NewClient(ctx, clientOpts...)
		if err != nil {
			log.Printf("[di.infra] WARN: storage.NewClient failed: %v (image upload disabled)", err)
		} else {
			inf.GCS = gcsClient
			log.Printf("[di.infra] GCS storage client initialized")
		}
		if inf.ProductImageBucket == "" {
			log.Printf("[di.infra] WARN: GCS_BUCKET is empty (image upload disabled)")
		}
	}

	// 3) Firebase App/Auth (best-effort; required for real requests but
	// tests and local tooling run without it)
	{
		fbCfg := &firebase.Config{ProjectID: strings.TrimSpace(cfg.FirebaseProjectID)}
		fbApp, err := firebase.NewApp(ctx, fbCfg, clientOpts...)
		if err != nil {
			log.Printf("[di.infra] WARN: firebase app init failed: %v", err)
		} else {
			inf.FirebaseApp = fbApp
			authClient, err := fbApp.Auth(ctx)
			if err != nil {
				log.Printf("[di.infra] WARN: firebase auth init failed: %v", err)
			} else {
				inf.FirebaseAuth = authClient
				log.Printf("[di.infra] Firebase Auth initialized")
			}
		}
	}

	// 4) Secret Manager (best-effort; only needed when the SendGrid key
	// is not in the environment)
	{
		sm, err := secretmanager.NewClient(ctx, clientOpts...)
		if err != nil {
			log.Printf("[di.infra] WARN: secretmanager.NewClient failed: %v", err)
		} else {
			inf.SecretManager = sm
		}
	}

	// 5) SendGrid key: env first, Secret Manager fallback
	inf.SendGridAPIKey = strings.TrimSpace(cfg.SendGridAPIKey)
	if inf.SendGridAPIKey == "" && strings.TrimSpace(cfg.SendGridKeySecret) != "" {
		key, err := inf.accessSecret(ctx, cfg.SendGridKeySecret)
		if err != nil {
			log.Printf("[di.infra] WARN: sendgrid key secret read failed: %v (confirmation mail disabled)", err)
		} else {
			inf.SendGridAPIKey = key
			log.Printf("[di.infra] SendGrid key loaded from Secret Manager")
		}
	}

	// 6) Postgres reporting mirror (best-effort; empty DB_HOST disables)
	if strings.TrimSpace(cfg.DBHost) != "" {
		db, err := database.NewConnection(cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)
		if err != nil {
			log.Printf("[di.infra] WARN: postgres connection failed: %v (order archive disabled)", err)
		} else {
			inf.Postgres = db
		}
	} else {
		log.Printf("[di.infra] Postgres not configured (DB_HOST empty); order archive disabled")
	}

	return inf, nil
}

// accessSecret reads one Secret Manager payload. name may be a full
// resource name or a bare secret id in this project.
func (i *Infra) accessSecret(ctx context.Context, name string) (string, error) {
	if i == nil || i.SecretManager == nil {
		return "", errors.New("di.infra: secret manager client is nil")
	}
	n := strings.TrimSpace(name)
	if n == "" {
		return "", errors.New("di.infra: secret name is empty")
	}
	if !strings.HasPrefix(n, "projects/") {
		n = "projects/" + i.ProjectID + "/secrets/" + n + "/versions/latest"
	}
	resp, err := i.SecretManager.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: n})
	if err != nil {
		return "", err
	}
	if resp == nil || resp.Payload == nil {
		return "", errors.New("di.infra: empty secret payload")
	}
	return strings.TrimSpace(string(resp.Payload.Data)), nil
}

func (i *Infra) Close() error {
	if i == nil {
		return nil
	}
	if i.Firestore != nil {
		_ = i.Firestore.Close()
	}
	if i.GCS != nil {
		_ = i.GCS.Close()
	}
	if i.SecretManager != nil {
		_ = i.SecretManager.Close()
	}
	if i.Postgres != nil {
		_ = i.Postgres.Close()
	}
	return nil
}
