package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	pkgcache "github.com/ghuser/todoapp/pkg/cache"
	"github.com/ghuser/todoapp/pkg/logger"
	"github.com/ghuser/todoapp/services/todo/domain/models"
	"github.com/ghuser/todoapp/services/todo/domain/repositories"
	domainsvcs "github.com/ghuser/todoapp/services/todo/domain/services"
)

const instrumentationName = "github.com/ghuser/todoapp/services/todo"

// ListCache holds the full ordered todo list. *pkgcache.TodoListCache
// satisfies it. Get returns redis.Nil on a miss along with the generation
// that Set must be given; Set drops the write once Invalidate has moved the
// generation on.
type ListCache interface {
	Get(ctx context.Context) ([]pkgcache.CachedTodo, int64, error)
	Set(ctx context.Context, gen int64, todos []pkgcache.CachedTodo) error
	Invalidate(ctx context.Context) error
}

// UpdateTodoInput carries the optional fields of an update. Nil means
// "leave unchanged".
type UpdateTodoInput struct {
	Completed *bool
	Text      *string
}

// TodoService orchestrates the five todo operations over a repository.
// Event publishing is handled by the repository layer (outbox pattern).
// Lists are served from Redis when a cache is configured; every successful
// mutation drops the cached list.
type TodoService struct {
	repo   repositories.TodoRepository
	cache  ListCache
	log    logger.Logger
	tracer trace.Tracer
	ops    metric.Int64Counter
}

// NewTodoService returns a TodoService. listCache may be nil.
func NewTodoService(repo repositories.TodoRepository, listCache ListCache, log logger.Logger) *TodoService {
	meter := otel.Meter(instrumentationName)
	ops, err := meter.Int64Counter("todo.operations",
		metric.WithDescription("Todo operations by name and outcome"),
	)
	if err != nil {
		log.Warn("todo: create operations counter", "error", err)
	}
	return &TodoService{
		repo:   repo,
		cache:  listCache,
		log:    log,
		tracer: otel.Tracer(instrumentationName),
		ops:    ops,
	}
}

// List returns every todo newest first, using a read-through cache:
//  1. Check Redis first.
//  2. On miss (or cache error), query the repository.
//  3. Store the result for the next reader, unless a write was invalidated
//     since the miss.
func (s *TodoService) List(ctx context.Context) (todos []*models.Todo, err error) {
	ctx, end := s.start(ctx, "list")
	defer func() { end(err) }()

	fill := false
	var gen int64
	if s.cache != nil {
		cached, g, cerr := s.cache.Get(ctx)
		switch {
		case cerr == nil:
			return fromCache(cached), nil
		case errors.Is(cerr, redis.Nil):
			fill, gen = true, g
		default:
			s.log.WarnContext(ctx, "todo list cache read failed", "error", cerr)
		}
	}

	todos, err = s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}

	if fill {
		if cerr := s.cache.Set(ctx, gen, toCache(todos)); cerr != nil {
			s.log.WarnContext(ctx, "todo list cache write failed", "error", cerr)
		}
	}
	return todos, nil
}

// Create validates text and persists a new, not-completed todo.
// Returns a wrapped domain.ErrInvalidTodoText when text is blank or too long.
func (s *TodoService) Create(ctx context.Context, text string) (todo *models.Todo, err error) {
	ctx, end := s.start(ctx, "create")
	defer func() { end(err) }()

	todoText, err := models.NewTodoText(text)
	if err != nil {
		return nil, fmt.Errorf("create todo: %w", err)
	}

	todo = models.NewTodo(todoText)
	if err := s.repo.Create(ctx, todo); err != nil {
		return nil, fmt.Errorf("save todo: %w", err)
	}

	s.invalidate(ctx)
	return todo, nil
}

// Update applies in to the todo with the given id. Blank replacement text is
// ignored. Returns domain.ErrTodoNotFound if id does not exist.
func (s *TodoService) Update(ctx context.Context, id int64, in UpdateTodoInput) (todo *models.Todo, err error) {
	ctx, end := s.start(ctx, "update", attribute.Int64("todo.id", id))
	defer func() { end(err) }()

	patch, err := domainsvcs.BuildPatch(in.Completed, in.Text)
	if err != nil {
		return nil, fmt.Errorf("update todo: %w", err)
	}

	todo, err = s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("update todo: %w", err)
	}

	if !patch.Empty() {
		s.invalidate(ctx)
	}
	return todo, nil
}

// Delete removes the todo with the given id.
// Returns domain.ErrTodoNotFound if no matching todo exists.
func (s *TodoService) Delete(ctx context.Context, id int64) (err error) {
	ctx, end := s.start(ctx, "delete", attribute.Int64("todo.id", id))
	defer func() { end(err) }()

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete todo: %w", err)
	}

	s.invalidate(ctx)
	return nil
}

// ClearCompleted removes every completed todo and returns how many went.
func (s *TodoService) ClearCompleted(ctx context.Context) (cleared int, err error) {
	ctx, end := s.start(ctx, "clear_completed")
	defer func() { end(err) }()

	cleared, err = s.repo.ClearCompleted(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear completed todos: %w", err)
	}

	if cleared > 0 {
		s.invalidate(ctx)
	}
	return cleared, nil
}

// Counts reports how many todos are still open and how many are done. It
// reads the repository directly so metric scrapes stay out of the operation
// counter and the list cache.
func (s *TodoService) Counts(ctx context.Context) (active, completed int, err error) {
	todos, err := s.repo.List(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("count todos: %w", err)
	}
	for _, t := range todos {
		if t.Completed {
			completed++
		} else {
			active++
		}
	}
	return active, completed, nil
}

// start opens a span for op and returns a func that closes it and counts the
// outcome.
func (s *TodoService) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := s.tracer.Start(ctx, "todo."+op, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		outcome := "ok"
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		if s.ops != nil {
			s.ops.Add(ctx, 1, metric.WithAttributes(
				attribute.String("op", op),
				attribute.String("outcome", outcome),
			))
		}
		span.End()
	}
}

func (s *TodoService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.WarnContext(ctx, "todo list cache invalidation failed", "error", err)
	}
}

func toCache(todos []*models.Todo) []pkgcache.CachedTodo {
	out := make([]pkgcache.CachedTodo, len(todos))
	for i, t := range todos {
		out[i] = pkgcache.CachedTodo{
			ID:        t.ID,
			Text:      t.Text.String(),
			Completed: t.Completed,
			CreatedAt: t.CreatedAt,
		}
	}
	return out
}

func fromCache(cached []pkgcache.CachedTodo) []*models.Todo {
	out := make([]*models.Todo, len(cached))
	for i, c := range cached {
		out[i] = &models.Todo{
			ID:        c.ID,
			Text:      models.TodoText(c.Text),
			Completed: c.Completed,
			CreatedAt: c.CreatedAt.UTC(),
		}
	}
	return out
}
