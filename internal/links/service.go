package links

import (
	"context"
	"errors"
	"net/url"

	"github.com/obiajulu/shortcode/codegen"
	"github.com/obiajulu/shortcode/internal/errx"
)

const (
	MinCodeLength   = 3
	MaxCodeLength   = 10
	MaxTargetLength = 2048
)

// CreateLinkRequest carries the parameters for creating a new link.
type CreateLinkRequest struct {
	Target     string
	CustomCode string // optional; a code is generated when empty
}

// Service defines the business operations for short links.
type Service interface {
	Create(ctx context.Context, req CreateLinkRequest) (Link, error)
	GetByCode(ctx context.Context, code string) (Link, error)
	ListAll(ctx context.Context) ([]Link, error)
	RecordClick(ctx context.Context, code string) (Link, error)
	Delete(ctx context.Context, code string) error
	RedirectTarget(ctx context.Context, code string) (string, error)
}

type service struct {
	repo       Repository
	codeGen    codegen.Generator
	codeLength int
}

// ServiceConfig holds configuration for the service.
type ServiceConfig struct {
	CodeGenerator codegen.Generator
	CodeLength    int
}

// NewService creates a new service instance.
func NewService(repo Repository, config *ServiceConfig) Service {
	if config == nil {
		config = &ServiceConfig{}
	}

	gen := config.CodeGenerator
	if gen == nil {
		gen = codegen.NewHex()
	}

	length := config.CodeLength
	if length < MinCodeLength || length > MaxCodeLength {
		length = codegen.DefaultLength
	}

	return &service{
		repo:       repo,
		codeGen:    gen,
		codeLength: length,
	}
}

// Create validates the request and inserts a new link. With a custom code
// the format is checked before any storage access. With a generated code
// the create is single-shot: a collision surfaces as the duplicate-code
// error and retrying is the caller's decision.
func (s *service) Create(ctx context.Context, req CreateLinkRequest) (Link, error) {
	const op = "links.service.Create"

	if err := validateTarget(req.Target); err != nil {
		return Link{}, errx.E(op, errx.Invalid, err)
	}

	code := req.CustomCode
	if code != "" {
		if err := validateCode(code); err != nil {
			return Link{}, errx.E(op, errx.Invalid, err)
		}
	} else {
		generated, err := s.codeGen.Generate(s.codeLength)
		if err != nil {
			return Link{}, errx.E(op, errx.Unavailable, err)
		}
		code = generated
	}

	created, err := s.repo.Create(ctx, Link{
		Code:   code,
		Target: req.Target,
	})
	if err != nil {
		return Link{}, errx.E(op, errx.KindOf(err), err)
	}
	return created, nil
}

func (s *service) GetByCode(ctx context.Context, code string) (Link, error) {
	const op = "links.service.GetByCode"

	if code == "" {
		return Link{}, errx.E(op, errx.Invalid, errors.New("code cannot be empty"))
	}

	link, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return Link{}, errx.E(op, errx.KindOf(err), err)
	}
	return link, nil
}

func (s *service) ListAll(ctx context.Context) ([]Link, error) {
	const op = "links.service.ListAll"

	all, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, errx.E(op, errx.KindOf(err), err)
	}
	return all, nil
}

func (s *service) RecordClick(ctx context.Context, code string) (Link, error) {
	const op = "links.service.RecordClick"

	if code == "" {
		return Link{}, errx.E(op, errx.Invalid, errors.New("code cannot be empty"))
	}

	link, err := s.repo.RecordClick(ctx, code)
	if err != nil {
		return Link{}, errx.E(op, errx.KindOf(err), err)
	}
	return link, nil
}

func (s *service) Delete(ctx context.Context, code string) error {
	const op = "links.service.Delete"

	if code == "" {
		return errx.E(op, errx.Invalid, errors.New("code cannot be empty"))
	}

	if err := s.repo.Delete(ctx, code); err != nil {
		return errx.E(op, errx.KindOf(err), err)
	}
	return nil
}

// RedirectTarget is the lookup used by the redirect path. It does not
// touch the click counter; click accounting is its own operation.
func (s *service) RedirectTarget(ctx context.Context, code string) (string, error) {
	const op = "links.service.RedirectTarget"

	if code == "" {
		return "", errx.E(op, errx.Invalid, errors.New("code cannot be empty"))
	}

	link, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		return "", errx.E(op, errx.KindOf(err), err)
	}
	return link.Target, nil
}

func validateTarget(rawURL string) error {
	if rawURL == "" {
		return errors.New("target cannot be empty")
	}
	if len(rawURL) > MaxTargetLength {
		return errors.New("target too long (max 2048 characters)")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid url format")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return errors.New("url scheme must be http or https")
	}
	if parsed.Host == "" {
		return errors.New("url must include host")
	}
	return nil
}

func validateCode(code string) error {
	if len(code) < MinCodeLength {
		return errors.New("code too short (minimum 3 characters)")
	}
	if len(code) > MaxCodeLength {
		return errors.New("code too long (maximum 10 characters)")
	}

	for _, char := range code {
		if !isAlphanumeric(char) {
			return errors.New("code contains invalid characters (only alphanumeric allowed)")
		}
	}
	return nil
}

func isAlphanumeric(c rune) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	default:
		return false
	}
}
