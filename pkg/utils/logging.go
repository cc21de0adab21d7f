package utils

import (
    "os"
    "path/filepath"
    "go.uber.org/zap"
    "go.uber.org/zap/zapcore"
)

var logger *zap.Logger

// Logger devolve o logger do processo: JSON no stdout, com tee para LOG_FILE
// quando definido. LOG_LEVEL=debug habilita logs de depuração.
func Logger() *zap.Logger {
    if logger != nil { return logger }
    lvl := zapcore.InfoLevel
    if os.Getenv("LOG_LEVEL") == "debug" { lvl = zapcore.DebugLevel }

    encCfg := zap.NewProductionEncoderConfig()
    enc := zapcore.NewJSONEncoder(encCfg)
    consoleCore := zapcore.NewCore(enc, zapcore.AddSync(os.Stdout), lvl)

    logFile := os.Getenv("LOG_FILE")
    if logFile == "" {
        logger = zap.New(consoleCore)
        return logger
    }
    _ = os.MkdirAll(filepath.Dir(logFile), 0o755)
    f, err := os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        logger = zap.New(consoleCore)
        return logger
    }
    fileCore := zapcore.NewCore(enc, zapcore.AddSync(f), lvl)
    logger = zap.New(zapcore.NewTee(fileCore, consoleCore))
    return logger
}
