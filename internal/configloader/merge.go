package configloader

import "github.com/yaklabco/gomobiledoc/pkg/config"

// merge combines two configurations, with override taking precedence over base.
// The merge follows these rules:
//   - Scalar values: override overwrites base if override is non-zero
//   - Slices: override replaces base entirely if override is non-nil
//   - Booleans can only be switched on by an override
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := *base

	if override.ConfigVersion != 0 {
		result.ConfigVersion = override.ConfigVersion
	}
	if override.Version != "" {
		result.Version = override.Version
	}
	if override.LogLevel != "" {
		result.LogLevel = override.LogLevel
	}
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Debug {
		result.Debug = true
	}

	result.Editor = mergeEditor(base.Editor, override.Editor)

	if override.Markdown.Flavor != "" {
		result.Markdown.Flavor = override.Markdown.Flavor
	}
	if override.Markdown.DetectCodeLanguage {
		result.Markdown.DetectCodeLanguage = true
	}

	if override.Cards.Allow != nil {
		result.Cards.Allow = append([]string(nil), override.Cards.Allow...)
	}
	if override.Cards.Unknown != "" {
		result.Cards.Unknown = override.Cards.Unknown
	}

	return &result
}

func mergeEditor(base, override config.EditorConfig) config.EditorConfig {
	result := base
	if override.UndoDepth != 0 {
		result.UndoDepth = override.UndoDepth
	}
	if override.UndoBlockTimeout != 0 {
		result.UndoBlockTimeout = override.UndoBlockTimeout
	}
	if override.Autofocus {
		result.Autofocus = true
	}
	if override.Placeholder != "" {
		result.Placeholder = override.Placeholder
	}
	return result
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		result = merge(result, configs[i])
	}
	return result
}
