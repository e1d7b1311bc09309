package user

import (
	"context"
	"fmt"

	domain "github.com/mohammadpnp/user-pipeline/internal/domain/user"
)

type CreateUserInput struct {
	Name   string
	Email  string
	Phone  string
	Gender string
}

type CreateUser interface {
	Execute(ctx context.Context, in CreateUserInput) (UserOutput, error)
}

type createUser struct {
	writer *RecordWriter
}

// NewCreateUser goes through the same reservation path as uploads so a
// manual create can never race an import into a duplicate.
func NewCreateUser(writer *RecordWriter) CreateUser {
	return &createUser{writer: writer}
}

func (uc *createUser) Execute(ctx context.Context, in CreateUserInput) (UserOutput, error) {
	result, err := uc.writer.Write(ctx, domain.RawRecord{
		domain.FieldName:   in.Name,
		domain.FieldEmail:  in.Email,
		domain.FieldPhone:  in.Phone,
		domain.FieldGender: in.Gender,
	})
	if err != nil {
		return UserOutput{}, fmt.Errorf("%w: %v", ErrCreateUser, err)
	}

	switch result.Outcome {
	case domain.OutcomeSkippedInvalid:
		return UserOutput{}, result.Reason
	case domain.OutcomeSkippedDuplicate:
		return UserOutput{}, ErrEmailTaken
	}
	return toUserOutput(result.User), nil
}
