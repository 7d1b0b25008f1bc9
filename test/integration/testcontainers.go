package integration

import (
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"idm-in-go/pkg/auth"
	"idm-in-go/pkg/config"
	"idm-in-go/pkg/crypto"
	"idm-in-go/pkg/server"
	"idm-in-go/pkg/server/endpoints"
	"idm-in-go/pkg/server/store"
	storegorm "idm-in-go/pkg/server/store/gorm"
	"idm-in-go/pkg/session"
)

// testAuthenticationDoc is the authentication document both server modes
// run with. Managed users come first, then internal users, then the
// static anonymous fallback, so scenarios can observe the chain moving on
// from a module that does not recognise the credentials.
const testAuthenticationDoc = `{
    "serverAuthContext": {
        "sessionModule": {
            "name": "JWT_SESSION",
            "properties": {
                "maxTokenLifeMinutes": 30
            }
        },
        "authModules": [
            {
                "name": "MANAGED_USER",
                "properties": {
                    "queryOnResource": "managed/user",
                    "queryId": "credential-query",
                    "propertyMapping": {
                        "authenticationId": "username",
                        "userCredential": "password",
                        "userRoles": "roles"
                    },
                    "defaultUserRoles": ["openidm-authorized"]
                }
            },
            {
                "name": "INTERNAL_USER",
                "properties": {
                    "queryOnResource": "internal/user",
                    "queryId": "credential-internaluser-query",
                    "propertyMapping": {
                        "authenticationId": "username",
                        "userCredential": "password"
                    },
                    "defaultUserRoles": ["openidm-admin"]
                }
            },
            {
                "name": "STATIC_USER",
                "properties": {
                    "queryOnResource": "internal/user",
                    "username": "anonymous",
                    "password": "anonymous",
                    "defaultUserRoles": ["openidm-reg"]
                }
            }
        ]
    }
}`

// TestContext holds all the resources needed for integration tests
type TestContext struct {
	DB            *gorm.DB
	RawDB         *sql.DB
	Container     testcontainers.Container
	ServerURL     string
	DatabaseURL   string
	DataKey       []byte
	Crypto        *crypto.Service
	Users         store.UserStore
	HTTPClient    *http.Client
	Cancel        context.CancelFunc
	ServerProcess *exec.Cmd
	InlineServer  *server.Server
}

// NewTestContext creates a new test context with PostgreSQL testcontainer.
// Modes:
//   - Binary mode (default): Set IDM_BINARY to the path of the idmctl binary
//   - Inline mode: Set IDM_INLINE=1 to run the server in-process (no binary needed)
func NewTestContext(ctx context.Context) (*TestContext, error) {
	// Find project root and migrations directory
	projectRoot, err := findProjectRoot()
	if err != nil {
		return nil, fmt.Errorf("failed to find project root: %w", err)
	}
	migrationsDir := filepath.Join(projectRoot, "db", "migrations")

	// Check mode
	inlineMode := os.Getenv("IDM_INLINE") == "1"
	binaryPath := os.Getenv("IDM_BINARY")

	if !inlineMode && binaryPath == "" {
		return nil, fmt.Errorf("Either IDM_BINARY or IDM_INLINE=1 is required.\n\nBinary mode:\n  go build -o idmctl ./cmd/idmctl\n  INTEGRATION_TEST=1 IDM_BINARY=$(pwd)/idmctl go test -v ./test/integration/...\n\nInline mode:\n  INTEGRATION_TEST=1 IDM_INLINE=1 go test -v ./test/integration/...")
	}

	if !inlineMode {
		// Verify the binary exists
		if _, err := os.Stat(binaryPath); err != nil {
			return nil, fmt.Errorf("IDM_BINARY path does not exist: %s", binaryPath)
		}
		log.Printf("Using binary: %s", binaryPath)
	} else {
		log.Println("Using inline server mode")
	}

	// Start PostgreSQL container
	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("idm_test"),
		tcpostgres.WithUsername("idm"),
		tcpostgres.WithPassword("idm"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	// Get connection string for the host (not container network)
	host, err := pgContainer.Host(ctx)
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container host: %w", err)
	}
	port, err := pgContainer.MappedPort(ctx, "5432")
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get container port: %w", err)
	}
	connStr := fmt.Sprintf("postgres://idm:idm@%s:%s/idm_test?sslmode=disable", host, port.Port())

	// Connect with GORM for test setup/assertions
	db, err := gorm.Open(gormpostgres.New(gormpostgres.Config{
		DSN:                  connStr,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get raw SQL connection for migrations
	rawDB, err := db.DB()
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get raw db: %w", err)
	}

	// Run migrations
	if err := runMigrations(rawDB, migrationsDir); err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Deterministic data key, shared with the server under test
	dataKey := make([]byte, crypto.KeySize)
	for i := range dataKey {
		dataKey[i] = byte(i)
	}
	cryptoService, err := crypto.NewService(dataKey)
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to create crypto service: %w", err)
	}

	serverPort := "18080" // Use a fixed port for testing
	serverURL := fmt.Sprintf("http://127.0.0.1:%s", serverPort)

	var serverProcess *exec.Cmd
	var inlineServer *server.Server
	var cancel context.CancelFunc

	if inlineMode {
		// Start inline server
		inlineServer, cancel, err = startInlineServer(db, dataKey, serverPort)
		if err != nil {
			_ = pgContainer.Terminate(ctx)
			return nil, fmt.Errorf("failed to start inline server: %w", err)
		}
	} else {
		// Start the actual binary
		serverProcess, cancel, err = startBinary(binaryPath, connStr, dataKey, serverPort)
		if err != nil {
			_ = pgContainer.Terminate(ctx)
			return nil, fmt.Errorf("failed to start server binary: %w", err)
		}
	}

	// Wait for server to be ready
	if err := waitForServer(serverURL, 30*time.Second); err != nil {
		cancel()
		if serverProcess != nil && serverProcess.Process != nil {
			_ = serverProcess.Process.Kill()
		}
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("server failed to become ready: %w", err)
	}

	return &TestContext{
		DB:            db,
		RawDB:         rawDB,
		Container:     pgContainer,
		ServerURL:     serverURL,
		DatabaseURL:   connStr,
		DataKey:       dataKey,
		Crypto:        cryptoService,
		Users:         storegorm.NewUserStore(db),
		HTTPClient:    &http.Client{Timeout: 10 * time.Second},
		Cancel:        cancel,
		ServerProcess: serverProcess,
		InlineServer:  inlineServer,
	}, nil
}

// startInlineServer starts the server in-process (no binary needed)
func startInlineServer(db *gorm.DB, dataKey []byte, port string) (*server.Server, context.CancelFunc, error) {
	_, cancel := context.WithCancel(context.Background())

	authDoc, err := config.ParseAuthentication([]byte(testAuthenticationDoc))
	if err != nil {
		cancel()
		return nil, nil, fmt.Errorf("failed to parse authentication document: %w", err)
	}

	sessions, err := session.NewModule(dataKey,
		session.WithTTL(30*time.Minute),
		session.WithIssuer("idm"),
	)
	if err != nil {
		cancel()
		return nil, nil, err
	}

	decryptor, err := crypto.NewService(dataKey)
	if err != nil {
		cancel()
		return nil, nil, err
	}

	users := storegorm.NewUserStore(db)
	health := storegorm.NewHealthStore(db)

	service := auth.NewService(auth.NewFactory(users, decryptor))
	service.Activate(authDoc.Modules())

	cfg := &config.ServerConfig{
		ListenAddress:     "127.0.0.1:" + port,
		SessionTTLMinutes: 30,
		SessionIssuer:     "idm",
	}

	s := server.NewServer(service, sessions, users, health, cfg, db)
	endpoints.RegisterAll(s)

	// Start server in background
	go func() {
		_ = s.Start()
	}()

	return s, cancel, nil
}

// startBinary starts the idmctl server binary
func startBinary(binaryPath, dbURL string, dataKey []byte, port string) (*exec.Cmd, context.CancelFunc, error) {
	authConfigFile, err := writeAuthenticationDoc()
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	// Use --no-migrate since we already ran migrations in the test setup
	cmd := exec.CommandContext(ctx, binaryPath, "server", "--no-migrate", "--listen-address", "127.0.0.1:"+port)
	cmd.Env = append(os.Environ(),
		"DATABASE_URL="+dbURL,
		"IDM_DATA_KEY="+base64.StdEncoding.EncodeToString(dataKey),
		"IDM_AUTH_CONFIG_FILE="+authConfigFile,
		"IDM_WATCH_AUTH_CONFIG=0",
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, nil, fmt.Errorf("failed to start binary: %w", err)
	}

	return cmd, cancel, nil
}

// writeAuthenticationDoc puts the test authentication document on disk for
// the binary under test.
func writeAuthenticationDoc() (string, error) {
	dir, err := os.MkdirTemp("", "idm-integration")
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "authentication.json")
	if err := os.WriteFile(path, []byte(testAuthenticationDoc), 0o600); err != nil {
		return "", err
	}
	return path, nil
}

// waitForServer polls the health endpoint until it responds or times out
func waitForServer(serverURL string, timeout time.Duration) error {
	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		resp, err := client.Get(serverURL + "/health")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("server did not become ready within %v", timeout)
}

// Close cleans up all test resources
func (tc *TestContext) Close(ctx context.Context) {
	if tc.Cancel != nil {
		tc.Cancel()
	}
	if tc.ServerProcess != nil && tc.ServerProcess.Process != nil {
		_ = tc.ServerProcess.Process.Kill()
		_ = tc.ServerProcess.Wait()
	}
	if tc.RawDB != nil {
		_ = tc.RawDB.Close()
	}
	if tc.Container != nil {
		_ = tc.Container.Terminate(ctx)
	}
}

// findProjectRoot locates the project root directory
func findProjectRoot() (string, error) {
	// Try relative paths from test directory
	paths := []string{
		"../..",
		"..",
		".",
	}

	for _, p := range paths {
		goMod := filepath.Join(p, "go.mod")
		if _, err := os.Stat(goMod); err == nil {
			return filepath.Abs(p)
		}
	}

	return "", fmt.Errorf("project root not found (looking for go.mod)")
}

// runMigrations executes the up migration files in order
func runMigrations(db *sql.DB, migrationsDir string) error {
	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.up.sql"))
	if err != nil {
		return err
	}

	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}

		if _, err := db.Exec(string(content)); err != nil {
			return fmt.Errorf("migration %s failed: %w", filepath.Base(file), err)
		}
	}

	return nil
}
