package ptsmsg

// LogType is the server's fixed log-message discriminator, per
// spec.md §3/§6 and original_source/libpts/src/pts.rs's LogType enum.
type LogType uint8

const (
	LogGeneralText       LogType = 0
	LogStartTestCase     LogType = 1
	LogTestCaseEnded     LogType = 2
	LogStartDefault      LogType = 3
	LogDefaultEnded      LogType = 4
	LogFinalVerdict      LogType = 5
	LogPreliminaryVerdict LogType = 6
	LogTimeout           LogType = 7
	LogAssignment        LogType = 8
	LogStartTimer        LogType = 9
	LogStopTimer         LogType = 10
	LogCancelTimer       LogType = 11
	LogReadTimer         LogType = 12
	LogAttach            LogType = 13
	LogImplicitSend      LogType = 14
	LogGoto              LogType = 15
	LogTimedOutTimer     LogType = 16
	LogError             LogType = 17
	LogCreate            LogType = 18
	LogDone              LogType = 19
	LogActivate          LogType = 20
	LogMessage           LogType = 21
	LogLineMatched       LogType = 22
	LogLineNotMatched    LogType = 23
	LogSendEvent         LogType = 24
	LogReceiveEvent      LogType = 25
	LogOtherwiseEvent    LogType = 26
	LogReceivedOnPco     LogType = 27
	LogMatchFailed       LogType = 28
	LogCoordinationMessage LogType = 29
)
