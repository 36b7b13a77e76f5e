package utils_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/codeaudit/internal/utils"
)

const (
	testLoggerFactoryCaseSupportedFormatConstant   = "supported_log_level_%s_format_%s"
	testLoggerFactoryCaseUnsupportedLevelConstant  = "unsupported_log_level"
	testLoggerFactoryCaseUnsupportedFormatConstant = "unsupported_log_format"
	testLoggerFactoryCaseFilteredLevelConstant     = "debug_filtered_at_warn"
	testLoggerFactorySubtestTemplateConstant       = "%d_%s"
	testInvalidLogLevelConstant                    = "invalid"
	testInvalidLogFormatConstant                   = "invalid"
	testLogMessageConstant                         = "logger_factory_test_message"
)

func TestLoggerFactoryCreateLogger(testInstance *testing.T) {
	testCases := []struct {
		name                string
		requestedLogLevel   utils.LogLevel
		requestedLogFormat  utils.LogFormat
		logAtDebug          bool
		expectError         bool
		expectOutput        bool
		expectStructuredLog bool
	}{
		{
			name:                fmt.Sprintf(testLoggerFactoryCaseSupportedFormatConstant, utils.LogLevelDebug, utils.LogFormatStructured),
			requestedLogLevel:   utils.LogLevelDebug,
			requestedLogFormat:  utils.LogFormatStructured,
			logAtDebug:          true,
			expectOutput:        true,
			expectStructuredLog: true,
		},
		{
			name:                fmt.Sprintf(testLoggerFactoryCaseSupportedFormatConstant, utils.LogLevelInfo, utils.LogFormatStructured),
			requestedLogLevel:   utils.LogLevelInfo,
			requestedLogFormat:  utils.LogFormatStructured,
			expectOutput:        true,
			expectStructuredLog: true,
		},
		{
			name:               fmt.Sprintf(testLoggerFactoryCaseSupportedFormatConstant, utils.LogLevelInfo, utils.LogFormatConsole),
			requestedLogLevel:  utils.LogLevelInfo,
			requestedLogFormat: utils.LogFormatConsole,
			expectOutput:       true,
		},
		{
			name:               testLoggerFactoryCaseFilteredLevelConstant,
			requestedLogLevel:  utils.LogLevelWarn,
			requestedLogFormat: utils.LogFormatStructured,
			logAtDebug:         true,
		},
		{
			name:               testLoggerFactoryCaseUnsupportedLevelConstant,
			requestedLogLevel:  utils.LogLevel(testInvalidLogLevelConstant),
			requestedLogFormat: utils.LogFormatStructured,
			expectError:        true,
		},
		{
			name:               testLoggerFactoryCaseUnsupportedFormatConstant,
			requestedLogLevel:  utils.LogLevelInfo,
			requestedLogFormat: utils.LogFormat(testInvalidLogFormatConstant),
			expectError:        true,
		},
	}

	for testCaseIndex, testCase := range testCases {
		testInstance.Run(fmt.Sprintf(testLoggerFactorySubtestTemplateConstant, testCaseIndex, testCase.name), func(testInstance *testing.T) {
			outputBuffer := &bytes.Buffer{}
			loggerFactory := utils.NewLoggerFactoryWithOutput(outputBuffer)

			logger, creationError := loggerFactory.CreateLogger(testCase.requestedLogLevel, testCase.requestedLogFormat)
			if testCase.expectError {
				require.Error(testInstance, creationError)
				require.Nil(testInstance, logger)
				return
			}
			require.NoError(testInstance, creationError)
			require.NotNil(testInstance, logger)

			if testCase.logAtDebug {
				logger.Debug(testLogMessageConstant)
			} else {
				logger.Info(testLogMessageConstant)
			}
			require.NoError(testInstance, logger.Sync())

			trimmedOutput := bytes.TrimSpace(outputBuffer.Bytes())
			if !testCase.expectOutput {
				require.Empty(testInstance, trimmedOutput)
				return
			}
			require.Contains(testInstance, string(trimmedOutput), testLogMessageConstant)
			require.Equal(testInstance, testCase.expectStructuredLog, json.Valid(trimmedOutput))
		})
	}
}

func TestParseLogLevelAndFormat(testInstance *testing.T) {
	parsedLevel, levelError := utils.ParseLogLevel(" DEBUG ")
	require.NoError(testInstance, levelError)
	require.Equal(testInstance, utils.LogLevelDebug, parsedLevel)

	_, invalidLevelError := utils.ParseLogLevel(testInvalidLogLevelConstant)
	require.Error(testInstance, invalidLevelError)

	parsedFormat, formatError := utils.ParseLogFormat("Console")
	require.NoError(testInstance, formatError)
	require.Equal(testInstance, utils.LogFormatConsole, parsedFormat)

	_, invalidFormatError := utils.ParseLogFormat(testInvalidLogFormatConstant)
	require.Error(testInstance, invalidFormatError)
}
