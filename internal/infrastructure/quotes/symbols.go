package quotes

import (
	"fmt"
	"maps"
	"os"

	"gopkg.in/yaml.v3"
)

// SymbolMap сопоставляет внутренний тикер символу поставщика.
type SymbolMap map[string]string

// DefaultSymbols символы Yahoo для инструментов рынка кофе.
func DefaultSymbols() SymbolMap {
	return SymbolMap{
		"KC":     "KC=F",
		"C8":     "RM=F",
		"USDBRL": "BRL=X",
		"B3":     "ICF=F",
	}
}

type symbolFile struct {
	Symbols map[string]string `yaml:"symbols"`
}

// LoadSymbolMap читает YAML-файл вида `symbols: {KC: "KC=F"}` поверх значений по умолчанию.
// Пустой путь возвращает значения по умолчанию.
func LoadSymbolMap(path string) (SymbolMap, error) {
	symbols := DefaultSymbols()
	if path == "" {
		return symbols, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile: %w", err)
	}

	var file symbolFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("yaml.Unmarshal: %w", err)
	}

	maps.Copy(symbols, file.Symbols)

	return symbols, nil
}

// Reverse обратное отображение символа поставщика во внутренний тикер.
func (m SymbolMap) Reverse() map[string]string {
	reversed := make(map[string]string, len(m))
	for ticker, symbol := range m {
		reversed[symbol] = ticker
	}

	return reversed
}
