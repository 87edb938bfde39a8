package dashboard

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	formcodec "github.com/go-playground/form/v4"

	"github.com/MarcGrol/agentstudio/lib/myerrors"
	"github.com/MarcGrol/agentstudio/services/agent"
)

type StartForm struct {
	Niche string `form:"niche"`
}

func NewStartFormFromRequest(r *http.Request) (StartForm, error) {
	err := r.ParseForm()
	if err != nil {
		return StartForm{}, myerrors.NewInvalidInputError(err)
	}
	return NewStartFormFromValues(r.Form)
}

func NewStartFormFromValues(values url.Values) (StartForm, error) {
	form := StartForm{}
	err := formcodec.NewDecoder().Decode(&form, values)
	if err != nil {
		return form, myerrors.NewInvalidInputError(fmt.Errorf("error decoding form: %s", err))
	}

	form.Niche = strings.TrimSpace(form.Niche)
	if form.Niche == "" {
		form.Niche = agent.DefaultNiche
	}

	return form, nil
}

func (f StartForm) ToForm() (url.Values, error) {
	values, err := formcodec.NewEncoder().Encode(f)
	if err != nil {
		return nil, fmt.Errorf("error encoding form: %s", err)
	}

	return values, nil
}
