package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleScript() Script {
	return Script{
		Name:     "breathe",
		Behavior: BehaviorOneShot,
		Steps: []StepSpec{
			{Action: "solid", Color: "black", DurationMS: 1000},
			{Action: "sine", Color: "white", DurationMS: 2500, PeriodMS: 2500},
			{Action: "solid", Color: "black", DurationMS: 1000},
		},
	}
}

func TestScriptHashDeterminism(t *testing.T) {
	h1, err := ScriptHash(sampleScript())
	require.NoError(t, err)
	h2, err := ScriptHash(sampleScript())
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")
}

func TestScriptHashChangesWithSteps(t *testing.T) {
	base := MustScriptHash(sampleScript())

	changed := sampleScript()
	changed.Steps[1].PeriodMS = 1250
	assert.NotEqual(t, base, MustScriptHash(changed))

	looped := sampleScript()
	looped.Behavior = BehaviorLoopForever
	assert.NotEqual(t, base, MustScriptHash(looped))
}

func TestScriptHashIgnoresDescription(t *testing.T) {
	described := sampleScript()
	described.Description = "one slow breath"
	assert.Equal(t, MustScriptHash(sampleScript()), MustScriptHash(described))
}

func TestScriptHashRejectsNonFinitePeriod(t *testing.T) {
	s := sampleScript()
	s.Steps[1].PeriodMS = posInf()
	_, err := ScriptHash(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ScriptHash")
}

func TestTraceHashDomainSeparation(t *testing.T) {
	frames := IRArray{IRObject{"seq": IRInt(0)}}
	th, err := TraceHash(frames)
	require.NoError(t, err)

	canonical, err := MarshalCanonical(frames)
	require.NoError(t, err)
	assert.Equal(t, hashWithDomain(DomainTrace, canonical), th)
	assert.NotEqual(t, hashWithDomain(DomainScript, canonical), th)
}

func TestScriptToIR(t *testing.T) {
	data, err := MarshalCanonical(sampleScript().ToIR())
	require.NoError(t, err)
	assert.Equal(t,
		`{"behavior":"one_shot","name":"breathe","steps":[`+
			`{"action":"solid","color":"black","duration_ms":1000},`+
			`{"action":"sine","color":"white","duration_ms":2500,"period_ms":2500},`+
			`{"action":"solid","color":"black","duration_ms":1000}]}`,
		string(data))
}

func posInf() float64 {
	var zero float64
	return 1 / zero
}
