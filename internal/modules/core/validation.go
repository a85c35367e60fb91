package core

import (
	"context"

	"github.com/eskrenkovic/mediator-go"
)

type Validator interface {
	Validate() error
}

var _ mediator.PipelineBehavior = (*RequestValidationBehavior)(nil)

type RequestValidationBehavior struct{}

func (b *RequestValidationBehavior) Handle(
	ctx context.Context,
	request interface{},
	next mediator.RequestHandlerFunc,
) (interface{}, error) {
	if request, ok := request.(Validator); ok {
		if err := request.Validate(); err != nil {
			return nil, Malformed(err.Error())
		}
	}

	return next(ctx, request)
}
