// Package logging contains helpers to write leveled messages to the system logger.
package logging

import (
	"fmt"
	"log"
)

const (
	infoPrefix  = "INFO: "
	warnPrefix  = "WARN: "
	errorPrefix = "ERROR: "
)

// PrintlnInfo logs the given message with the INFO level prefix.
func PrintlnInfo(logger *log.Logger, message interface{}) {
	logger.Println(infoPrefix + fmt.Sprint(message))
}

// PrintlnWarn logs the given message with the WARN level prefix.
func PrintlnWarn(logger *log.Logger, message interface{}) {
	logger.Println(warnPrefix + fmt.Sprint(message))
}

// PrintlnError logs the given message with the ERROR level prefix.
func PrintlnError(logger *log.Logger, message interface{}) {
	logger.Println(errorPrefix + fmt.Sprint(message))
}
