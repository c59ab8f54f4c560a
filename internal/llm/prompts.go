package llm

// The draft marker is substituted verbatim; everything else in a prompt is a
// fixed behavioral instruction.
const draftMarker = "[Draft]"

// CardPrompt produces the long-form project-card text for the PDF.
const CardPrompt = `Write a detailed description of an industrial design project based on the draft below. The text must:
- Use a positive, friendly tone.
- Clearly describe the project idea, its implementation and the designed object.
- Explain the purpose and function of the object.
- Include professional vocabulary (for example: ergonomics, materials, production process).
- Be written in B1-B2 level English (simple sentences, basic technical terms).
- Follow this structure:
        - Project title (1 line).
        - Idea description (2-3 sentences).
        - Implementation details (materials/technology, 2 sentences).
        - Object functionality (1-2 sentences).
Draft: [Draft]`

// SocialPrompt produces short copy for social media.
const SocialPrompt = `Create a concise social media text (TikTok/Instagram) based on the draft below. The text must:
- Be positive, friendly and engaging (use emoji 😊).
- Briefly describe the project idea, the designed object and its function.
- Use professional vocabulary in a simplified way (for example: "ergonomic design", "innovative materials").
- Be written in B1-B2 level English (short sentences, simple verbs).
- Fit in 2-3 sentences plus hashtags (for example: #IndustrialDesign #Innovation plus project-specific tags).
Draft: [Draft]`
