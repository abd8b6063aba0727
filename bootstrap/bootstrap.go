package bootstrap

import (
	"log/slog"

	"go.uber.org/dig"

	"RMDB/internal/application"
	"RMDB/internal/application/service"
	"RMDB/internal/domain"
	"RMDB/internal/platform/config"
	"RMDB/internal/platform/logger"
	"RMDB/internal/platform/parser"
	"RMDB/internal/platform/repl"
	"RMDB/internal/platform/repository"
	"RMDB/internal/platform/server"
	"RMDB/internal/platform/storage"
)

func Run() (bool, error) {
	container := dig.New()
	serviceConstructors := []interface{}{
		config.LoadConfig,
		newLogger,
		newEngine,
		newCatalog,
		parser.New,
		service.NewLoadRelationService,
		service.NewPrintService,
		service.NewExportService,
		service.NewClearService,
		service.NewListService,
		service.NewRenameService,
		service.NewIndexService,
		service.NewSortService,
		service.NewSelectService,
		service.NewProjectService,
		service.NewCrossService,
		service.NewJoinService,
		service.NewDistinctService,
		service.NewGroupByService,
		service.NewOrderByService,
		service.NewTransposeService,
		service.NewSymmetryService,
		service.NewComputeService,
		application.NewExecutor,
		repl.NewREPL,
	}
	for _, constructor := range serviceConstructors {
		if err := container.Provide(constructor); err != nil {
			return false, err
		}
	}
	err := container.Invoke(func(cfg config.Config,
		exec *application.Executor,
		catalog domain.CatalogRepository,
		eng *storage.Engine,
		log *slog.Logger,
		r *repl.REPL) error {
		if cfg.ServerPort > 0 {
			srv := server.NewServer(cfg.ServerPort, exec, catalog, eng, log)
			go func() {
				if err := srv.Run(); err != nil {
					log.Error("server stopped", "err", err)
				}
			}()
		}
		return r.Run()
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func newLogger(cfg config.Config) *slog.Logger {
	return logger.New(logger.Config{Level: cfg.LogLevel, Format: "text"})
}

func newEngine(cfg config.Config, log *slog.Logger) (*storage.Engine, error) {
	policy := storage.Policy{
		BlockSizeBytes: cfg.BlockSizeKB * 1000,
		BlockCount:     cfg.BlockCount,
		PrintCount:     cfg.PrintCount,
	}
	return storage.NewEngine(cfg.DataDirectory, policy, log)
}

func newCatalog() domain.CatalogRepository {
	return repository.NewCatalog()
}
