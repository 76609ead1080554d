package storage

import (
	"encoding/json"
	"errors"

	"sasfit/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeSession(s model.SessionRecord) ([]byte, error) {
	return json.Marshal(s)
}

func DecodeSession(data []byte) (model.SessionRecord, error) {
	var session model.SessionRecord
	if err := json.Unmarshal(data, &session); err != nil {
		return model.SessionRecord{}, err
	}
	if err := checkVersion(session.VersionedRecord); err != nil {
		return model.SessionRecord{}, err
	}
	return session, nil
}

func EncodeTheory(t model.TheoryRecord) ([]byte, error) {
	return json.Marshal(t)
}

func DecodeTheory(data []byte) (model.TheoryRecord, error) {
	var theory model.TheoryRecord
	if err := json.Unmarshal(data, &theory); err != nil {
		return model.TheoryRecord{}, err
	}
	if err := checkVersion(theory.VersionedRecord); err != nil {
		return model.TheoryRecord{}, err
	}
	return theory, nil
}

func EncodeNLLFHistory(history []float64) ([]byte, error) {
	return json.Marshal(history)
}

func DecodeNLLFHistory(data []byte) ([]float64, error) {
	var history []float64
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
