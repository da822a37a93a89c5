package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPolicies = `[
  {"policyId":"P1","name":"N1","severity":"high","policyType":"config","policySubTypes":["run","build"],"remediable":true,"openAlertsCount":1,
   "complianceMetadata":[{"standardName":"CIS","requirementId":"1"}]},
  {"policyId":"P2","name":"N2","severity":"low","policyType":"network","policySubTypes":[],"remediable":false,"openAlertsCount":0}
]`

func TestPoliciesDocument(t *testing.T) {
	assert.NoError(t, Document(Policies, []byte(validPolicies)))
	assert.NoError(t, Document(Policies, []byte(`[]`)))
}

func TestPoliciesDocumentMissingID(t *testing.T) {
	err := Document(Policies, []byte(`[{"name":"N1","severity":"high","policyType":"config","policySubTypes":[],"remediable":true,"openAlertsCount":1}]`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidDocument))
	assert.Contains(t, err.Error(), "policyId")
}

func TestAlertsDocument(t *testing.T) {
	assert.NoError(t, Document(Alerts, []byte(`[{"status":"resolved","reason":"RESOURCE_DELETED","policy":{"policyId":"P1","remediable":true}}]`)))
}

func TestAlertsDocumentMissingPolicy(t *testing.T) {
	err := Document(Alerts, []byte(`[{"status":"open"}]`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidDocument))
}

func TestDocumentNotAnArray(t *testing.T) {
	err := Document(Alerts, []byte(`{}`))
	assert.True(t, errors.Is(err, ErrInvalidDocument))
}

func TestDocumentNotJSON(t *testing.T) {
	err := Document(Policies, []byte(`not json`))
	assert.True(t, errors.Is(err, ErrInvalidDocument))
}

func TestDocumentTruncatesErrorList(t *testing.T) {
	err := Document(Alerts, []byte(`[{},{},{},{},{},{},{}]`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "more")
}

func TestUnknownKind(t *testing.T) {
	err := Document(Kind("nope"), []byte(`[]`))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrInvalidDocument))
}
