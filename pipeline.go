package sudoemail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// SealedField is one sealed field of an entity.
type SealedField struct {
	Name     string
	Envelope *SealedEnvelope
	KeyType  KeyType

	// Decode parses the unsealed plaintext. The returned apply func is only
	// called once every field of the entity has decoded, so a failed entity
	// keeps no partially unsealed values.
	Decode func(plaintext string) (apply func(), err error)
}

// Unsealable is an entity carrying sealed fields.
type Unsealable interface {
	SealedFields() []SealedField
	SetStatus(EntityStatus)
}

// Pipeline unseals entities and reports a status per entity instead of
// failing the whole read.
type Pipeline struct {
	keys        *KeyManager
	sealer      *Sealer
	log         *logrus.Logger
	tracer      trace.Tracer
	concurrency int
	onFailure   func(entity Unsealable, err error)
}

// NewPipeline creates a Pipeline.
func NewPipeline(keys *KeyManager, sealer *Sealer, opts ...Option) *Pipeline {
	return newPipeline(keys, sealer, newConfig(opts))
}

func newPipeline(keys *KeyManager, sealer *Sealer, cfg *clientConfig) *Pipeline {
	return &Pipeline{
		keys:        keys,
		sealer:      sealer,
		log:         cfg.logger,
		tracer:      cfg.tracer(),
		concurrency: cfg.unsealConcurrency,
		onFailure:   cfg.onUnsealFailure,
	}
}

// Unseal unseals every sealed field of entity in declared order, sets the
// entity's status and returns it. The first failing field determines the
// cause.
func (p *Pipeline) Unseal(ctx context.Context, entity Unsealable) EntityStatus {
	status := p.unseal(ctx, entity)
	entity.SetStatus(status)
	return status
}

func (p *Pipeline) unseal(ctx context.Context, entity Unsealable) EntityStatus {
	var applies []func()
	for _, field := range entity.SealedFields() {
		if field.Envelope == nil {
			continue
		}

		apply, err := p.unsealField(ctx, field)
		if err != nil {
			p.log.WithFields(logrus.Fields{
				"entity": fmt.Sprintf("%T", entity),
				"field":  field.Name,
				"error":  err,
			}).Debug("failed to unseal field")
			if p.onFailure != nil {
				p.onFailure(entity, err)
			}
			return Failed(err)
		}
		if apply != nil {
			applies = append(applies, apply)
		}
	}

	for _, apply := range applies {
		apply()
	}
	return Completed()
}

func (p *Pipeline) unsealField(ctx context.Context, field SealedField) (func(), error) {
	if err := field.Envelope.Validate(); err != nil {
		return nil, err
	}

	keyID := field.Envelope.KeyID
	exists, err := p.keys.KeyExists(ctx, keyID, field.KeyType)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, &KeyNotFoundError{KeyID: keyID, KeyType: field.KeyType}
	}

	plaintext, err := p.sealer.Unseal(ctx, field.Envelope, field.KeyType)
	if err != nil {
		return nil, err
	}

	if field.Decode == nil {
		return nil, nil
	}
	apply, err := field.Decode(plaintext)
	if err != nil {
		return nil, classifyDecodeError(err)
	}
	return apply, nil
}

// classifyDecodeError maps JSON errors from a field decoder to SDK errors.
func classifyDecodeError(err error) error {
	var sdkErr SudoEmailError
	if errors.As(err, &sdkErr) {
		return err
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &SyntaxError{Err: err}
	}
	return &DecodeError{Message: "Could not decode unsealed payload", Err: err}
}

// UnsealBatch unseals items concurrently. The call never fails: items that
// do not unseal are reported in ListOutput.Failed.
func UnsealBatch[T Unsealable](ctx context.Context, p *Pipeline, items []T) ListOutput[T] {
	ctx, span := p.tracer.Start(ctx, "sudoemail.UnsealBatch", trace.WithAttributes(
		attribute.Int("batch.size", len(items)),
	))
	defer span.End()

	statuses := make([]EntityStatus, len(items))

	var g errgroup.Group
	g.SetLimit(p.concurrency)
	for i, item := range items {
		g.Go(func() error {
			statuses[i] = p.Unseal(ctx, item)
			return nil
		})
	}
	_ = g.Wait()

	out := ListOutput[T]{Status: ListStatusSuccess}
	for i, item := range items {
		if statuses[i].IsFailed() {
			out.Failed = append(out.Failed, FailedItem[T]{Item: item, Cause: statuses[i].Cause})
			continue
		}
		out.Items = append(out.Items, item)
	}
	if len(out.Failed) > 0 {
		out.Status = ListStatusPartial
	}

	span.SetAttributes(attribute.Int("batch.failed", len(out.Failed)))
	return out
}

// UnsealValue unseals a single envelope into an Outcome.
func UnsealValue(ctx context.Context, p *Pipeline, env *SealedEnvelope, keyType KeyType) Outcome[string] {
	var value string
	field := SealedField{
		Name:     "value",
		Envelope: env,
		KeyType:  keyType,
		Decode: func(plaintext string) (func(), error) {
			return func() { value = plaintext }, nil
		},
	}
	if env == nil {
		return Failure[string](fmt.Errorf("%w: nil envelope", ErrInvalidEnvelope))
	}

	apply, err := p.unsealField(ctx, field)
	if err != nil {
		return Failure[string](err)
	}
	apply()
	return Success(value)
}
