package template

const StyleCSS = `
body > div {
  margin: 0 auto;
  padding: 0 1em;
  box-sizing: border-box;
  line-height: 1.5;
  text-align: justify;
}

h1 {
  text-align: center;
  font-size: 1.5em;
  margin: 1.5em auto;
  font-weight: bold;
}

h2#footnotes {
  font-size: 1.1em;
  margin-top: 2em;
  border-top: 1px solid #e0e0e0;
  padding-top: 0.5em;
}

p {
  margin: 0.8em 0;
}

hr {
  border: none;
  border-bottom: 1px solid #e0e0e0;
  margin: 1.5em 20%;
}

img {
  max-width: 100%;
  height: auto;
  display: block;
  margin-left: auto !important;
  margin-right: auto !important;
  margin-top: 1em;
  margin-bottom: 1em;
}

aside {
  font-size: 0.9em;
  margin: 0.5em 0;
}

div.cover {
  text-align: center;
  padding: 0;
}

div.cover img {
  max-height: 100%;
}

p.author, p.rating, p.source {
  text-align: center;
}

ul.subjects {
  list-style: none;
  padding: 0;
  text-align: center;
}

ul.subjects li {
  display: inline;
  margin: 0 0.4em;
}

nav ol {
  list-style: none;
  padding-left: 0;
}
`
