package container

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	"github.com/trezcool/studymatch/core"
	"github.com/trezcool/studymatch/core/match"
	"github.com/trezcool/studymatch/core/message"
	"github.com/trezcool/studymatch/core/notification"
	"github.com/trezcool/studymatch/core/points"
	"github.com/trezcool/studymatch/core/review"
	"github.com/trezcool/studymatch/core/session"
	"github.com/trezcool/studymatch/core/subject"
	"github.com/trezcool/studymatch/core/user"
	emailsvc "github.com/trezcool/studymatch/services/email"
	"github.com/trezcool/studymatch/storage/database"
	dummydb "github.com/trezcool/studymatch/storage/database/dummy"
	sqlxrepos "github.com/trezcool/studymatch/storage/database/sqlx"
	redisstore "github.com/trezcool/studymatch/storage/redis"
)

const dbSetUpTimeout = 30 * time.Second

// Container resolves the dependencies shared by the executables.
// Dependencies are built lazily, on the first call to Services.
type Container struct {
	dig     *dig.Container
	closers []func() error
}

// Services holds every core service, ready to use.
type Services struct {
	dig.In

	Conf     *core.Config
	Logger   core.Logger
	Validate *core.Validator
	Mail     core.EmailService
	Redis    *redisstore.Redis

	Users         *user.Service
	Subjects      *subject.Service
	Notifications *notification.Service
	Ledger        *points.Ledger
	Sessions      *session.Service
	Reviews       *review.Service
	Matches       *match.Service
	Messages      *message.Service
}

// repositories is the Data Store, backed by the configured database engine.
type repositories struct {
	dig.Out

	Users         user.Repository
	Subjects      subject.Repository
	Sessions      session.Repository
	Reviews       review.Repository
	Messages      message.Repository
	Notifications notification.Repository
}

// New returns a new dependency injection container for `conf`.
func New(conf *core.Config, logger core.Logger) (*Container, error) {
	c := &Container{dig: dig.New()}

	providers := []interface{}{
		func() *core.Config { return conf },
		func() core.Logger { return logger },
		c.newRepositories,
		c.newRedis,
		newEmailService,
		core.NewValidator,
		subject.NewService,
		user.NewService,
		notification.NewService,
		points.NewLedger,
		session.NewService,
		review.NewService,
		match.NewService,
		message.NewService,
	}
	for _, provider := range providers {
		if err := c.dig.Provide(provider); err != nil {
			return nil, errors.Wrap(err, "failed to provide dependency")
		}
	}
	return c, nil
}

func (c *Container) Services() (Services, error) {
	var svcs Services
	err := c.dig.Invoke(func(s Services) { svcs = s })
	return svcs, errors.Wrap(err, "resolving services")
}

// Close releases the database and redis connections opened by the container.
func (c *Container) Close() error {
	var firstErr error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	c.closers = nil
	return firstErr
}

func (c *Container) newRepositories(conf *core.Config, logger core.Logger) (repositories, error) {
	switch conf.Database.Engine {
	case core.DBEngineMemory:
		db, err := dummydb.Open()
		if err != nil {
			return repositories{}, errors.Wrap(err, "opening in-memory database")
		}
		logger.Warn("using the in-memory database: data is lost on exit")
		return repositories{
			Users:         dummydb.NewUserRepository(db),
			Subjects:      dummydb.NewSubjectRepository(db),
			Sessions:      dummydb.NewSessionRepository(db),
			Reviews:       dummydb.NewReviewRepository(db),
			Messages:      dummydb.NewMessageRepository(db),
			Notifications: dummydb.NewNotificationRepository(db),
		}, nil

	case core.DBEnginePostgres:
		db, err := setUpDB(conf)
		if err != nil {
			return repositories{}, errors.Wrap(err, "setting up database")
		}
		c.closers = append(c.closers, db.Close)
		return repositories{
			Users:         sqlxrepos.NewUserRepository(db),
			Subjects:      sqlxrepos.NewSubjectRepository(db),
			Sessions:      sqlxrepos.NewSessionRepository(db),
			Reviews:       sqlxrepos.NewReviewRepository(db),
			Messages:      sqlxrepos.NewMessageRepository(db),
			Notifications: sqlxrepos.NewNotificationRepository(db),
		}, nil
	}
	return repositories{}, errors.Errorf("unsupported database engine %q", conf.Database.Engine)
}

// setUpDB creates the database if needed, connects and applies pending migrations.
func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dbSetUpTimeout)
	defer cancel()

	if err := database.CreateIfNotExist(ctx, conf); err != nil {
		return nil, err
	}
	db, err := database.Open(ctx, conf)
	if err != nil {
		return nil, err
	}
	if err = database.Migrate(db.DB, "up"); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// newRedis returns nil when no redis address is configured.
func (c *Container) newRedis(conf *core.Config) *redisstore.Redis {
	if conf.Redis.Addr == "" {
		return nil
	}
	r := redisstore.NewRedis(conf.Redis.Addr)
	c.closers = append(c.closers, r.Close)
	return r
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	core.ParseEmailTemplates(conf, logger)
	if conf.Debug || conf.TestMode || conf.SendgridAPIKey == "" {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}
