package usecases

import (
	"context"
	"errors"

	"postgrab/internal/domain"
	"postgrab/pkg/log"
)

// PostResolver defines the interface for resolving a post into a bundle.
type PostResolver interface {
	Resolve(ctx context.Context, ref domain.PostReference) (*domain.ContentBundle, error)
}

// ResolvePostUseCase resolves a post link with a primary strategy and an
// optional fallback.
type ResolvePostUseCase struct {
	name     string
	primary  PostResolver
	fallback PostResolver
}

// NewResolvePostUseCase creates a new ResolvePostUseCase. fallback may be nil.
func NewResolvePostUseCase(name string, primary, fallback PostResolver) *ResolvePostUseCase {
	return &ResolvePostUseCase{
		name:     name,
		primary:  primary,
		fallback: fallback,
	}
}

// Execute parses link and resolves the referenced post. The fallback runs
// only when the primary reports domain.ErrPostNotFound or domain.ErrUpstream.
func (uc *ResolvePostUseCase) Execute(ctx context.Context, link string) (*domain.ContentBundle, error) {
	ref, err := domain.ParseReference(link)
	if err != nil {
		return nil, err
	}

	ctx = log.WithFields(ctx, "use_case", uc.name)

	bundle, err := uc.primary.Resolve(ctx, ref)
	if err == nil {
		return bundle, nil
	}
	if uc.fallback == nil || !shouldFallBack(err) {
		return nil, err
	}

	log.GlobalWarnCtx(ctx, "primary strategy failed, trying fallback", "code", ref.Code, "error", err)
	return uc.fallback.Resolve(ctx, ref)
}

func shouldFallBack(err error) bool {
	return errors.Is(err, domain.ErrPostNotFound) || errors.Is(err, domain.ErrUpstream)
}
