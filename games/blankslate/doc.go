// Package blankslate implements the Blank Slate party game.
//
// Players join a room by code and are shown a phrase with a blank in it,
// such as "hand_" or "_cream". Everyone submits a single word to fill the
// blank. Once every player in the room has answered, the round is scored:
//
//   - a word written by exactly two players earns each of them 15 points
//   - a word written by three or more players earns each of them 1 point
//   - a word nobody else wrote earns nothing
//   - if every player wrote the same word, nobody scores
//
// The game starts automatically when the room fills up and ends as soon as
// anyone reaches the win score, or when the phrases run out, in which case
// the single highest scorer wins.
package blankslate
