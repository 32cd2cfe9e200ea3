package vision

// Prompt is the fixed instruction sent after the image. It pins the reply to
// one JSON object with four top-level fields; the validator tolerates drift
// from it.
const Prompt = `The image shows a football play drawn by hand on a whiteboard or on paper.
Find every player symbol, every route line and the line of scrimmage, and describe them as JSON.

Players: circles, squares, X or O marks, or letters standing for offensive players.
Position letters written next to a symbol are its label. The five offensive linemen
stand side by side on the line of scrimmage and are often drawn as squares or marked T, G, C.

Routes: lines leaving a player. An arrow head, a dot or a bare end marks where the route stops.
Dashed or wavy lines usually mean motion or blocking.

Line of scrimmage: a horizontal line separating offense from defense, drawn or implied by
where the linemen stand.

Coordinates are percentages of the image: x from 0 (left) to 100 (right), y from 0 (top)
to 100 (bottom). The offense faces the top of the image.

Labels: QB, RB, FB, X, Y, Z, H, A, F, T, G, C, LT, LG, RG, RT, WR, TE, HB. Use your best guess
when a symbol is unlabeled and lower its confidence.

Confidence runs from 0 to 1: 1 is unambiguous, 0.6 is a reasonable guess, below 0.4 is very uncertain.

Reply with one JSON object and nothing else, shaped exactly like this:

{
  "players": [
    {"x": 50, "y": 70, "label": "QB", "confidence": 0.9, "isLineman": false}
  ],
  "routes": [
    {
      "originPlayerIndex": 0,
      "points": [{"x": 50, "y": 40}],
      "style": "solid | dashed | zigzag",
      "terminator": "arrow | dot | none",
      "confidence": 0.8
    }
  ],
  "lineOfScrimmage": {"y": 60, "confidence": 0.9},
  "notes": "anything unclear about the drawing or the photo"
}

originPlayerIndex points into the players array. Mark exactly the five offensive linemen
with isLineman true. If the picture is not a play diagram, return empty arrays and say why in notes.
Only include routes you can actually see.`
