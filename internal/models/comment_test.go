package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommentIsReview(t *testing.T) {
	rating := 3
	assert.True(t, (&Comment{Rating: &rating}).IsReview())
	assert.False(t, (&Comment{}).IsReview())
}
