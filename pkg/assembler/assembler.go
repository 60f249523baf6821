// Copyright (C) 2021  Antonio Lassandro

// This program is free software: you can redistribute it and/or modify it
// under the terms of the GNU General Public License as published by the Free
// Software Foundation, either version 3 of the License, or (at your option)
// any later version.

// This program is distributed in the hope that it will be useful, but WITHOUT
// ANY WARRANTY; without even the implied warranty of MERCHANTABILITY or
// FITNESS FOR A PARTICULAR PURPOSE.  See the GNU General Public License for
// more details.

// You should have received a copy of the GNU General Public License along
// with this program.  If not, see <http://www.gnu.org/licenses/>.

package assembler

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/lassandro/go8080/pkg/encoding"
	"github.com/lassandro/go8080/pkg/machine"
)

// Encodings grouped by mnemonic, straight from the processor's definition
// table
var instructions = make(map[string][]machine.Definition)

func init() {
	for op := 0; op < 256; op++ {
		def := machine.Lookup(uint8(op))

		if def.Exec == nil {
			continue
		}

		// The undocumented NOP encodings are never emitted
		if def.Mnemonic == "NOP" && def.Opcode != 0x00 {
			continue
		}

		instructions[def.Mnemonic] = append(instructions[def.Mnemonic], def)
	}
}

func parseDirective(ident string) DirectiveType {
	if strings.EqualFold(ident, ".ORG") {
		return DIRECTIVE_ORG
	} else if strings.EqualFold(ident, ".DB") {
		return DIRECTIVE_DB
	} else if strings.EqualFold(ident, ".DW") {
		return DIRECTIVE_DW
	} else if strings.EqualFold(ident, ".DS") {
		return DIRECTIVE_DS
	} else if strings.EqualFold(ident, ".END") {
		return DIRECTIVE_END
	}

	return DIRECTIVE_INVALID
}

func parseInstruction(ident string) []machine.Definition {
	return instructions[strings.ToUpper(ident)]
}

// Hex literals in the x2A form lex as identifiers
func isHexIdent(s string) bool {
	if len(s) < 2 || (s[0] != 'x' && s[0] != 'X') {
		return false
	}

	for _, char := range s[1:] {
		if !unicode.Is(unicode.ASCII_Hex_Digit, char) {
			return false
		}
	}

	return true
}

// Accepts signed values down to -2^(bits-1) and unsigned values up to
// 2^bits-1, returning them truncated to bits.
func parseLiteral(token *Token, bits LiteralType) (uint16, error) {
	result, err := encoding.DecodeLiteral(token.Value)

	if err != nil {
		return 0, &InvalidLiteralError{token.Position}
	}

	limit := int32(1)<<bits - 1

	if result > limit || result < -(int32(1)<<(bits-1)) {
		return 0, &OversizedLiteralError{token.Position, limit, result}
	}

	return uint16(result) & uint16(limit), nil
}

func operandMatches(slot string, token *Token) bool {
	switch slot {
	case machine.OPERAND_BYTE:
		return token.Type == TOKEN_LITERAL
	case machine.OPERAND_WORD:
		return token.Type == TOKEN_LITERAL || token.Type == TOKEN_IDENT
	}

	switch token.Type {
	case TOKEN_IDENT:
		return strings.EqualFold(slot, token.Value)
	case TOKEN_LITERAL:
		// RST numbers
		value, err := encoding.DecodeLiteral(token.Value)
		return err == nil && strconv.Itoa(int(value)) == slot
	}

	return false
}

func operandError(slot string, token *Token) error {
	switch slot {
	case machine.OPERAND_BYTE:
		return &InvalidOperandError{
			token.Position,
			[]TokenType{TOKEN_LITERAL},
			token.Type,
		}
	case machine.OPERAND_WORD:
		return &InvalidOperandError{
			token.Position,
			[]TokenType{TOKEN_LITERAL, TOKEN_IDENT},
			token.Type,
		}
	}

	if token.Type == TOKEN_IDENT || token.Type == TOKEN_LITERAL {
		return &InvalidRegisterError{token.Position}
	}

	return &InvalidOperandError{
		token.Position,
		[]TokenType{TOKEN_IDENT},
		token.Type,
	}
}

// Picks the encoding whose fixed operands match. Every encoding of a mnemonic
// takes the same operand kinds in the same positions.
func selectDefinition(
	defs []machine.Definition, operands []Token,
) (machine.Definition, error) {
	for _, def := range defs {
		matched := true

		for i := range operands {
			if !operandMatches(def.Operands[i], &operands[i]) {
				matched = false
				break
			}
		}

		if matched {
			return def, nil
		}
	}

	// Blame the first operand no encoding accepts
	for i := range operands {
		accepted := false

		for _, def := range defs {
			if operandMatches(def.Operands[i], &operands[i]) {
				accepted = true
				break
			}
		}

		if !accepted {
			return defs[0], operandError(defs[0].Operands[i], &operands[i])
		}
	}

	// Each operand fits some encoding, but not together (MOV M,M)
	last := &operands[len(operands)-1]
	return defs[0], &InvalidRegisterError{last.Position}
}

// Reports whether tokens form a complete directive or instruction statement.
func isStatement(tokens []Token) bool {
	if len(tokens) == 0 {
		return false
	}

	switch tokens[0].Type {
	case TOKEN_DIRECTIVE:
		return parseDirective(tokens[0].Value) != DIRECTIVE_INVALID
	case TOKEN_IDENT:
		defs := parseInstruction(tokens[0].Value)

		if defs == nil || len(tokens)-1 != len(defs[0].Operands) {
			return false
		}

		_, err := selectDefinition(defs, tokens[1:])
		return err == nil
	}

	return false
}

// A leading identifier without a colon is a label unless it is a mnemonic.
// Mnemonics are labels too when only the rest of the line is a statement, as
// in "SUB RET".
func isLabel(tokens []Token) bool {
	if tokens[0].Type != TOKEN_IDENT {
		return false
	}

	if parseInstruction(tokens[0].Value) == nil {
		return true
	}

	return !isStatement(tokens) && isStatement(tokens[1:])
}

// Assemble8080Source assembles input into a memory image. When symtable is
// not nil it receives the line offsets and labels of the program.
func Assemble8080Source(input io.Reader, symtable *SymTable) (result *Image, errs []error) {
	type LabelRef struct {
		Label    string
		Addr     uint32
		Position Cursor
	}

	var labels = make(map[string]uint16)
	var labelRefs []LabelRef

	var program uint32 = 0

	var lowest uint32 = 1 << 16
	var highest uint32 = 0

	var builder strings.Builder
	var scanner = bufio.NewScanner(input)

	var cursor = Cursor{Line: 1, Column: 0, Size: 0, Byte: 0}

	result = &Image{}
	errs = make([]error, 0)

	emit := func(value uint8) bool {
		if program > 0xFFFF {
			errs = append(errs, &OversizedBinaryError{})
			return false
		}

		result.Memory[program] = value

		if program < lowest {
			lowest = program
		}

		if program > highest {
			highest = program
		}

		program++
		return true
	}

	emitWord := func(value uint16) bool {
		lo, hi := encoding.SplitWord(value)
		return emit(lo) && emit(hi)
	}

	nextLine := func(line string) {
		cursor.Line++
		cursor.Byte += int64(len(line) + 1)
		cursor.LineByte += int64(len(line) + 1)
	}

	// Process:
	// - Parse line
	// - Assemble line
	for scanner.Scan() {
		var tokens = make([]Token, 0, 5)
		var tokenStart int = 0
		var tokenType TokenType = TOKEN_NONE
		var escaped bool = false
		var lastChar rune = 0

		var lineErrs = len(errs)

		line := scanner.Text()
		builder.Grow(len(line))

		cursor.Size = int64(len(line))

		flushToken := func() {
			if builder.Len() > 0 {
				var token Token
				token.Position = Cursor{
					Line:     cursor.Line,
					Column:   tokenStart,
					Byte:     cursor.Byte + int64(tokenStart-1),
					Size:     int64(builder.Len()),
					LineByte: cursor.Byte,
				}
				token.Type = tokenType
				token.Value = builder.String()

				if token.Type == TOKEN_IDENT && isHexIdent(token.Value) {
					token.Type = TOKEN_LITERAL
				}

				tokens = append(tokens, token)
				builder.Reset()
			}

			tokenType = TOKEN_NONE
		}

		// Parse Line:
		// - Gather tokens and their types
		// - Check for syntax errors
		for column, char := range line {
			cursor.Column = column + 1

			var flush bool = false
			var skip bool = false
			var keep bool = true

			if tokenType == TOKEN_NONE {
				tokenStart = cursor.Column
			}

			if !unicode.IsSpace(char) {
				lastChar = char
			}

			switch {
			// String contents, up to the closing quote
			case tokenType == TOKEN_STRING:
				if char > unicode.MaxASCII {
					errs = append(errs, &OversizedCharacterError{cursor})
				}

				if escaped {
					escaped = false
				} else if char == '\\' {
					escaped = true
				} else if char == '"' {
					builder.WriteRune(char)
					flush = true
					keep = false
				}

			// Whitespace
			case unicode.IsSpace(char):
				if tokenType == TOKEN_NONE {
					continue
				}

				flush = true
				keep = false

			// Comments
			case char == ';':
				flush = true
				skip = true

			// Assembler Directives
			case char == '.':
				if tokenType == TOKEN_NONE {
					tokenType = TOKEN_DIRECTIVE
				} else {
					errs = append(errs, &UnexpectedCharacterError{cursor, char})
				}

			// Operand Separator
			case char == ',':
				flush = true
				keep = false

			// Label Declaration (i.e. LOOP:)
			case char == ':':
				if tokenType == TOKEN_IDENT {
					tokenType = TOKEN_LABEL
					flush = true
					keep = false
				} else {
					errs = append(errs, &UnexpectedCharacterError{cursor, char})
				}

			// Base 10 Literal (i.e. #42)
			case char == '#':
				if tokenType == TOKEN_NONE {
					tokenType = TOKEN_LITERAL
				} else {
					errs = append(errs, &UnexpectedCharacterError{cursor, char})
				}

			// String Literal
			case char == '"':
				if tokenType == TOKEN_NONE {
					tokenType = TOKEN_STRING
				} else {
					errs = append(errs, &UnexpectedCharacterError{cursor, char})
				}

			// Numeric Literal (i.e. 42, 0x2A, 2Ah)
			case unicode.IsDigit(char):
				if tokenType == TOKEN_NONE {
					tokenType = TOKEN_LITERAL
				}

			// Numeric Sign
			case char == '-':
				if tokenType == TOKEN_NONE {
					tokenType = TOKEN_LITERAL
				} else if tokenType != TOKEN_LITERAL {
					errs = append(errs, &UnexpectedCharacterError{cursor, char})
				}

			// Underscore'd Identifier
			case char == '_':
				if tokenType == TOKEN_NONE {
					tokenType = TOKEN_IDENT
				} else if tokenType != TOKEN_IDENT {
					errs = append(errs, &UnexpectedCharacterError{cursor, char})
				}

			// Identifier
			case unicode.IsLetter(char):
				if char > unicode.MaxASCII {
					errs = append(errs, &OversizedCharacterError{cursor})
				}

				if tokenType == TOKEN_NONE {
					tokenType = TOKEN_IDENT
				}

			default:
				if char > unicode.MaxASCII {
					errs = append(errs, &OversizedCharacterError{cursor})
				} else {
					errs = append(
						errs, &UnexpectedCharacterError{cursor, char},
					)
				}
			}

			if flush {
				flushToken()
			} else if keep && !skip {
				builder.WriteRune(char)
			}

			if skip {
				lastChar = 0
				break
			}
		}

		if tokenType == TOKEN_STRING {
			errs = append(errs, &InvalidStringError{cursor})
		}

		if lastChar == ',' {
			errs = append(errs, &UnexpectedCharacterError{cursor, lastChar})
		}

		flushToken()

		if len(tokens) == 0 {
			nextLine(line)
			continue
		}

		// Pass any potential assembler errors if we already had parser errors
		if len(errs) > lineErrs {
			nextLine(line)
			continue
		}

		// Assemble line
		// - Write instruction bytes to result
		// - Save label refs for unknown labels
		// - Type check instruction arguments
		var label *Token = nil
		var directive DirectiveType
		var defs []machine.Definition
		var keyword *Token = nil
		var operands []Token

		statement := tokens

		if tokens[0].Type == TOKEN_LABEL || isLabel(tokens) {
			label = &tokens[0]
			statement = tokens[1:]
		}

		if label != nil {
			if _, exists := labels[label.Value]; !exists {
				labels[label.Value] = uint16(program)
			} else {
				errs = append(
					errs, &RedeclaredLabelError{label.Position, label.Value},
				)
			}

			// No need to assemble label-only statements
			if len(statement) == 0 {
				nextLine(line)
				continue
			}
		}

		keyword = &statement[0]
		operands = statement[1:]

		if keyword.Type == TOKEN_DIRECTIVE {
			directive = parseDirective(keyword.Value)
		} else if keyword.Type == TOKEN_IDENT {
			defs = parseInstruction(keyword.Value)
		}

		if directive == DIRECTIVE_INVALID && defs == nil {
			errs = append(
				errs,
				&UnknownIdentifierError{keyword.Position, keyword.Value},
			)

			nextLine(line)
			continue
		}

		if directive == DIRECTIVE_END {
			if count := len(operands); count != 0 {
				errs = append(
					errs, &InvalidNumArgumentsError{keyword.Position, 0, count},
				)
			}

			break
		}

		if symtable != nil && program <= 0xFFFF &&
			(defs != nil || directive == DIRECTIVE_DB || directive == DIRECTIVE_DW) {
			symtable.Symbols[uint16(program)] = cursor.LineByte
		}

		switch directive {
		// .ORG addr
		case DIRECTIVE_ORG:
			if count := len(operands); count != 1 {
				errs = append(
					errs, &InvalidNumArgumentsError{keyword.Position, 1, count},
				)

				break
			}

			if operands[0].Type != TOKEN_LITERAL {
				errs = append(
					errs,
					&InvalidOperandError{
						operands[0].Position,
						[]TokenType{TOKEN_LITERAL},
						operands[0].Type,
					},
				)

				break
			}

			literal, err := parseLiteral(&operands[0], LITERAL_WORD)

			if err != nil {
				errs = append(errs, err)
			}

			program = uint32(literal)

		// .DB byte|"string", ...
		case DIRECTIVE_DB:
			if len(operands) == 0 {
				errs = append(
					errs, &InvalidNumArgumentsError{keyword.Position, 1, 0},
				)

				break
			}

			for i := range operands {
				operand := &operands[i]

				switch operand.Type {
				case TOKEN_LITERAL:
					literal, err := parseLiteral(operand, LITERAL_BYTE)

					if err != nil {
						errs = append(errs, err)
					}

					if !emit(uint8(literal)) {
						return
					}

				case TOKEN_STRING:
					s, err := strconv.Unquote(operand.Value)

					if err != nil {
						errs = append(errs, &InvalidStringError{operand.Position})
					}

					for j := 0; j < len(s); j++ {
						if !emit(s[j]) {
							return
						}
					}

				default:
					errs = append(
						errs,
						&InvalidOperandError{
							operand.Position,
							[]TokenType{TOKEN_LITERAL, TOKEN_STRING},
							operand.Type,
						},
					)
				}
			}

		// .DW word|label, ...
		case DIRECTIVE_DW:
			if len(operands) == 0 {
				errs = append(
					errs, &InvalidNumArgumentsError{keyword.Position, 1, 0},
				)

				break
			}

			for i := range operands {
				operand := &operands[i]

				switch operand.Type {
				case TOKEN_LITERAL:
					literal, err := parseLiteral(operand, LITERAL_WORD)

					if err != nil {
						errs = append(errs, err)
					}

					if !emitWord(literal) {
						return
					}

				case TOKEN_IDENT:
					labelRefs = append(
						labelRefs,
						LabelRef{operand.Value, program, operand.Position},
					)

					if !emitWord(0x0000) {
						return
					}

				default:
					errs = append(
						errs,
						&InvalidOperandError{
							operand.Position,
							[]TokenType{TOKEN_LITERAL, TOKEN_IDENT},
							operand.Type,
						},
					)
				}
			}

		// .DS count
		case DIRECTIVE_DS:
			if count := len(operands); count != 1 {
				errs = append(
					errs, &InvalidNumArgumentsError{keyword.Position, 1, count},
				)

				break
			}

			if operands[0].Type != TOKEN_LITERAL {
				errs = append(
					errs,
					&InvalidOperandError{
						operands[0].Position,
						[]TokenType{TOKEN_LITERAL},
						operands[0].Type,
					},
				)

				break
			}

			literal, err := parseLiteral(&operands[0], LITERAL_WORD)

			if err != nil {
				errs = append(errs, err)
			}

			program += uint32(literal)

			if program > 1<<16 {
				errs = append(errs, &OversizedBinaryError{})
				return
			}
		}

		if defs != nil {
			if count := len(operands); count != len(defs[0].Operands) {
				errs = append(
					errs,
					&InvalidNumArgumentsError{
						keyword.Position, len(defs[0].Operands), count,
					},
				)

				nextLine(line)
				continue
			}

			def, err := selectDefinition(defs, operands)

			if err != nil {
				errs = append(errs, err)

				nextLine(line)
				continue
			}

			if !emit(def.Opcode) {
				return
			}

			for i, slot := range def.Operands {
				operand := &operands[i]

				switch slot {
				case machine.OPERAND_BYTE:
					literal, err := parseLiteral(operand, LITERAL_BYTE)

					if err != nil {
						errs = append(errs, err)
					}

					if !emit(uint8(literal)) {
						return
					}

				case machine.OPERAND_WORD:
					if operand.Type == TOKEN_IDENT {
						labelRefs = append(
							labelRefs,
							LabelRef{operand.Value, program, operand.Position},
						)
					}

					var literal uint16

					if operand.Type == TOKEN_LITERAL {
						literal, err = parseLiteral(operand, LITERAL_WORD)

						if err != nil {
							errs = append(errs, err)
						}
					}

					if !emitWord(literal) {
						return
					}
				}
			}
		}

		nextLine(line)
	}

	if err := scanner.Err(); err != nil {
		errs = append(errs, err)
	}

	// Label
	// - Validate and resolve label references
	// - Add labels to symbol table
	for _, ref := range labelRefs {
		addr, exists := labels[ref.Label]

		if !exists {
			errs = append(errs, &UnknownLabelError{ref.Position, ref.Label})
			continue
		}

		lo, hi := encoding.SplitWord(addr)
		result.Memory[ref.Addr] = lo
		result.Memory[ref.Addr+1] = hi
	}

	if symtable != nil {
		for label, addr := range labels {
			symtable.Labels[addr] = label
		}
	}

	if lowest <= highest {
		result.Origin = uint16(lowest)
		result.Size = int(highest-lowest) + 1
	}

	return
}
