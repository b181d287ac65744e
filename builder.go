package starterauth

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/jeziorskilukasz/starterauth/jwt"
	"github.com/jeziorskilukasz/starterauth/kv"
	"github.com/jeziorskilukasz/starterauth/password"
	"github.com/jeziorskilukasz/starterauth/session"
)

// Builder assembles an [Engine]. Configuration problems are reported by
// Build, never deferred to request time.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	users MailUserDeps
	built bool
}

// MailUserDeps groups the injected collaborators so the zero Builder stays
// small to reason about.
type MailUserDeps struct {
	Users    UserProvider
	Mail     MailSender
	Logger   zerolog.Logger
	Metrics  prometheus.Registerer
	Cleanups []CleanupFunc
}

// New returns a Builder with an empty configuration and a no-op logger.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
		users:  MailUserDeps{Logger: zerolog.Nop()},
	}
}

// WithConfig replaces the configuration. The config is cloned; later
// mutation of the argument does not affect the builder.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the Redis client backing the kv adapter.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserProvider sets the user-storage collaborator.
func (b *Builder) WithUserProvider(up UserProvider) *Builder {
	b.users.Users = up
	return b
}

// WithMailSender sets the transactional-mail collaborator.
func (b *Builder) WithMailSender(ms MailSender) *Builder {
	b.users.Mail = ms
	return b
}

// WithLogger sets the engine logger. Defaults to a no-op logger.
func (b *Builder) WithLogger(logger zerolog.Logger) *Builder {
	b.users.Logger = logger
	return b
}

// WithMetrics enables prometheus metrics, registered against reg.
func (b *Builder) WithMetrics(reg prometheus.Registerer) *Builder {
	b.users.Metrics = reg
	return b
}

// WithAccountCleanup registers a hook run during account deletion, after
// sessions are revoked and before the user record is removed.
func (b *Builder) WithAccountCleanup(fn CleanupFunc) *Builder {
	b.users.Cleanups = append(b.users.Cleanups, fn)
	return b
}

// Build validates the configuration and assembles the Engine. A Builder can
// build at most once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.users.Users == nil {
		return nil, errors.New("user provider required")
	}
	if b.users.Mail == nil {
		return nil, errors.New("mail sender required")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store := kv.NewStore(b.redis)

	engine := &Engine{
		config:   cfg,
		log:      b.users.Logger,
		users:    b.users.Users,
		mail:     b.users.Mail,
		store:    store,
		sessions: session.NewRegistry(store, cfg.Session.KeyPrefix),
		metrics:  NewMetrics(b.users.Metrics),
		cleanups: b.users.Cleanups,
	}

	hasher, err := password.NewHasher(cfg.Password.BcryptCost)
	if err != nil {
		return nil, err
	}
	engine.hasher = hasher

	engine.jwtAccess, err = jwt.NewManager(cfg.JWT.Access.Secret, cfg.JWT.Access.TTL)
	if err != nil {
		return nil, err
	}
	engine.jwtRefresh, err = jwt.NewManager(cfg.JWT.Refresh.Secret, cfg.JWT.Refresh.TTL)
	if err != nil {
		return nil, err
	}

	engine.jwtOps = make(map[OperationType]*jwt.Manager, len(operationTypes))
	for _, op := range operationTypes {
		opCfg, err := cfg.Operations.For(op)
		if err != nil {
			return nil, err
		}
		mgr, err := jwt.NewManager(opCfg.Secret, opCfg.TTL)
		if err != nil {
			return nil, err
		}
		engine.jwtOps[op] = mgr
	}

	b.built = true
	return engine, nil
}
