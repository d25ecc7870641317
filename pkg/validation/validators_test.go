package validation

import (
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type sample struct {
	Title string    `validate:"not_blank"`
	Name  string    `validate:"no_emoji"`
	When  time.Time `validate:"future_time"`
}

func TestCustomValidators(t *testing.T) {
	v := validator.New()
	RegisterValidators(v)

	future := time.Now().Add(time.Hour)
	assert.NoError(t, v.Struct(sample{Title: "Go Engineer", Name: "Zoë", When: future}))
	assert.NoError(t, v.Struct(sample{Title: "x"}))

	assert.Error(t, v.Struct(sample{Title: "   ", When: future}))
	assert.Error(t, v.Struct(sample{Title: "x", Name: "rocket 🚀"}))
	assert.Error(t, v.Struct(sample{Title: "x", When: time.Now().Add(-time.Minute)}))
}
