// Command agentcore wires the task manager, reasoning core, tool
// executor, skill subsystem, and orchestration layer into a single
// running process and waits for a shutdown signal.
//
// It does not expose an HTTP or CLI surface of its own — that's a
// deployment concern left to whatever embeds this module. This binary
// exists to prove the composition root wires cleanly end to end.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/relaycortex/agentcore/pkg/agentconfig"
	"github.com/relaycortex/agentcore/pkg/agentlogger"
	"github.com/relaycortex/agentcore/pkg/agentregistry"
	"github.com/relaycortex/agentcore/pkg/event"
	"github.com/relaycortex/agentcore/pkg/oauthmgr"
	"github.com/relaycortex/agentcore/pkg/orchestration"
	"github.com/relaycortex/agentcore/pkg/skill"
	"github.com/relaycortex/agentcore/pkg/task"
	"github.com/relaycortex/agentcore/pkg/tool"
)

func main() {
	agentconfig.LoadDotEnv(".env")
	cfg := agentconfig.FromEnvironment()

	logger := agentlogger.New(agentlogger.Options{Level: os.Getenv("AGENTCORE_LOG_LEVEL"), JSON: os.Getenv("AGENTCORE_LOG_FORMAT") == "json"})
	slog.SetDefault(logger)

	c, err := wire(cfg, logger)
	if err != nil {
		logger.Error("wiring failed", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	logger.Info("agentcore core wired and idle",
		"tenant_id", cfg.TenantID,
		"agents", c.agents.ListIDs(),
		"skill_roots", []string{cfg.SkillRootProject, cfg.SkillRootPersonal, cfg.SkillRootEnterp},
	)
	<-ctx.Done()
	logger.Info("agentcore stopped")
}

// core holds every long-lived collaborator constructed by wire, for
// inspection by main and (eventually) an embedding process.
type core struct {
	agents       *agentregistry.Registry
	agentCards   *agentregistry.InMemoryAgentRepository
	tasks        *task.Manager
	toolRegistry *tool.Registry
	executor     *tool.Executor
	skillLoader  *skill.Loader
	oauth        *oauthmgr.Manager
	handoffs     *orchestration.HandoffManager
	delegation   *orchestration.DelegationManager
	router       *orchestration.StreamRouter
}

// wire builds every core collaborator, the way (for example) hector's
// ServeCmd.Run assembles config/runtime/server/session in one place
// before handing control to the event loop.
func wire(cfg agentconfig.Config, logger *slog.Logger) (*core, error) {
	taskRepo := agentregistry.NewInMemoryTaskRepository()
	agentRepo := agentregistry.NewInMemoryAgentRepository()
	convRepo := agentregistry.NewInMemoryConversationRepository()
	oauthRepo := agentregistry.NewInMemoryOAuthRepository()

	agents := agentregistry.NewRegistry()
	tasks := task.NewManager(taskRepo, agents)

	toolRegistry := tool.NewRegistry()
	executor := tool.NewExecutor(toolRegistry, nil, nil, logger)

	skillLoader := skill.NewLoader(cfg.SkillRootProject, cfg.SkillRootPersonal, cfg.SkillRootEnterp)
	toolRegistry.Register(skill.NewPseudoTool(skillLoader))

	encKey, err := credentialEncryptionKey()
	if err != nil {
		return nil, err
	}
	enc, err := oauthmgr.NewCredentialEncryption(encKey)
	if err != nil {
		return nil, err
	}
	oauth := oauthmgr.NewManager(map[string]oauthmgr.ProviderConfig{}, enc, oauthRepo)

	handoffStore := orchestration.NewConversationHandoffStore(convRepo)
	handoffs := orchestration.NewHandoffManager(handoffStore, noOpAccepter{})
	delegation := orchestration.NewDelegationManager(noOpExecutor{}, 0)
	router := orchestration.NewStreamRouter(handoffs, "orchestrator")

	return &core{
		agents: agents, agentCards: agentRepo, tasks: tasks, toolRegistry: toolRegistry, executor: executor,
		skillLoader: skillLoader, oauth: oauth, handoffs: handoffs, delegation: delegation, router: router,
	}, nil
}

// credentialEncryptionKey resolves the 32-byte AES-256 key OAuthManager
// uses to encrypt stored tokens, from AGENTCORE_CREDENTIAL_KEY (raw
// bytes, must be exactly 32 long). This composition root does not
// generate or persist a key on the caller's behalf.
func credentialEncryptionKey() ([]byte, error) {
	key := os.Getenv("AGENTCORE_CREDENTIAL_KEY")
	if len(key) != 32 {
		return nil, fmt.Errorf("AGENTCORE_CREDENTIAL_KEY must be set to exactly 32 bytes (got %d)", len(key))
	}
	return []byte(key), nil
}

type noOpAccepter struct{}

func (noOpAccepter) AcceptHandoff(ctx context.Context, req orchestration.HandoffRequest) (orchestration.HandoffAccept, error) {
	return orchestration.HandoffAccept{Accepted: false, RejectionReason: "no target agents registered"}, nil
}

type noOpExecutor struct{}

func (noOpExecutor) Execute(ctx context.Context, agentID, threadID, tenantID, userID, message string) (<-chan event.Event, error) {
	return nil, fmt.Errorf("no executor wired for agent %q", agentID)
}
