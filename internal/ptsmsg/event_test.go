package ptsmsg

import (
	"testing"

	"github.com/btpts/ptsrunner/internal/ttcn"
	"github.com/stretchr/testify/assert"
)

func logMsg(logtype LogType, message string) Message {
	return Message{Kind: KindLog, LogType: logtype, LogMessage: message}
}

func TestToEventEnterStepNoArgs(t *testing.T) {
	ev := ToEvent(logMsg(LogAttach, ": 3 Enter Test Step TC_SRC_CC_BV_01_C"))
	assert.Equal(t, EventEnterStep, ev.Kind)
	assert.Equal(t, "TC_SRC_CC_BV_01_C", ev.Name)
	assert.Empty(t, ev.Values)
}

func TestToEventEnterStepWithArgs(t *testing.T) {
	ev := ToEvent(logMsg(LogAttach, ": 3 Enter Test Step FOO ( 1, 2 )"))
	assert.Equal(t, EventEnterStep, ev.Kind)
	assert.Equal(t, "FOO", ev.Name)
	assert.Equal(t, []ttcn.Value{
		{Kind: ttcn.Integer, Text: "1"},
		{Kind: ttcn.Integer, Text: "2"},
	}, ev.Values)
}

func TestToEventExitStep(t *testing.T) {
	ev := ToEvent(logMsg(LogAttach, ": 3 Exit  Test Step TC_SRC_CC_BV_01_C"))
	assert.Equal(t, EventExitStep, ev.Kind)
	assert.Equal(t, "TC_SRC_CC_BV_01_C", ev.Name)
}

func TestToEventAttachUnrecognisedIsError(t *testing.T) {
	ev := ToEvent(logMsg(LogAttach, "something unexpected"))
	assert.Equal(t, EventError, ev.Kind)
}

func TestToEventSendWithPDU(t *testing.T) {
	ev := ToEvent(logMsg(LogSendEvent, "CMD_SET_ACL_CONN_ENCRYPTION=PDU: '2A'H"))
	assert.Equal(t, EventSend, ev.Kind)
	assert.Equal(t, "CMD_SET_ACL_CONN_ENCRYPTION", ev.Name)
	assert.Equal(t, []ttcn.Value{{Kind: ttcn.HexString, Text: "2A"}}, ev.Values)
}

func TestToEventReceiveWithoutPDU(t *testing.T) {
	ev := ToEvent(logMsg(LogReceiveEvent, "some   raw    text"))
	assert.Equal(t, EventReceive, ev.Kind)
	assert.Equal(t, "some raw text", ev.Name)
	assert.Empty(t, ev.Values)
}

func TestToEventAssignment(t *testing.T) {
	ev := ToEvent(logMsg(LogAssignment, "my_var := 42"))
	assert.Equal(t, EventAssign, ev.Kind)
	assert.Equal(t, "my_var", ev.Name)
	assert.Equal(t, []ttcn.Value{{Kind: ttcn.Integer, Text: "42"}}, ev.Values)
}

func TestToEventFinalVerdictVariants(t *testing.T) {
	ev := ToEvent(logMsg(LogFinalVerdict, "OUTPUT/some text"))
	assert.Equal(t, EventLog, ev.Kind)
	assert.Equal(t, "some text", ev.Name)

	ev = ToEvent(logMsg(LogFinalVerdict, "VERDICT/PASS"))
	assert.Equal(t, EventFinalVerdict, ev.Kind)
	assert.Equal(t, "PASS", ev.Name)

	ev = ToEvent(logMsg(LogFinalVerdict, "PASS"))
	assert.Equal(t, EventVerdict, ev.Kind)
	assert.Equal(t, "PASS", ev.Name)
}

func TestToEventImplicitSendMessage(t *testing.T) {
	ev := ToEvent(Message{Kind: KindImplicitSend, Description: "{1,T,P}text"})
	assert.Equal(t, EventManMachineInterface, ev.Kind)
	assert.Equal(t, "{1,T,P}text", ev.Name)
}

func TestToEventUnroutedLogtypeIsIgnored(t *testing.T) {
	ev := ToEvent(logMsg(LogLineMatched, "whatever"))
	assert.Equal(t, EventIgnored, ev.Kind)
}

func TestParseTime(t *testing.T) {
	ms, ok := ParseTime("+10 ms")
	assert.True(t, ok)
	assert.Equal(t, int64(10), ms)

	_, ok = ParseTime("")
	assert.False(t, ok)
}
