package term

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scripted answers questions from a fixed list, in order.
func scripted(answers ...string) (lineReader, *[]string) {
	asked := []string{}
	return func(msg string) (string, error) {
		asked = append(asked, msg)
		if len(answers) == 0 {
			return "", errors.New("no more answers")
		}
		next := answers[0]
		answers = answers[1:]
		return next, nil
	}, &asked
}

func TestConfirmPassword(t *testing.T) {
	read, asked := scripted("hunter22", "hunter22")
	warnings := []string{}

	password, err := confirmPassword(read, func(msg string) { warnings = append(warnings, msg) }, "Password:", "Confirm password:")
	require.NoError(t, err)
	assert.Equal(t, "hunter22", password)
	assert.Equal(t, []string{"Password:", "Confirm password:"}, *asked)
	assert.Empty(t, warnings)
}

func TestConfirmPasswordReasksOnMismatch(t *testing.T) {
	read, asked := scripted("hunter22", "hunter23", "", "s3cret!!", "s3cret!!")
	warnings := []string{}

	password, err := confirmPassword(read, func(msg string) { warnings = append(warnings, msg) }, "Password:", "Confirm password:")
	require.NoError(t, err)
	assert.Equal(t, "s3cret!!", password)
	assert.Len(t, *asked, 5)
	assert.Equal(t, []string{"Passwords don't match, try again", "Password can't be blank"}, warnings)
}

func TestConfirmPasswordGivesUp(t *testing.T) {
	read, _ := scripted("a1", "b1", "a2", "b2", "a3", "b3", "never read")

	_, err := confirmPassword(read, func(string) {}, "Password:", "Confirm password:")
	assert.ErrorContains(t, err, "didn't match")
}

func TestConfirmPasswordReadError(t *testing.T) {
	read, _ := scripted("hunter22")

	_, err := confirmPassword(read, func(string) {}, "Password:", "Confirm password:")
	assert.ErrorContains(t, err, "confirmation")
}

func TestYesNo(t *testing.T) {
	for _, c := range []rune{'y', 'Y'} {
		yes, ok := yesNo(c)
		assert.True(t, ok)
		assert.True(t, yes)
	}
	yes, ok := yesNo('N')
	assert.True(t, ok)
	assert.False(t, yes)

	_, ok = yesNo('q')
	assert.False(t, ok)
}
